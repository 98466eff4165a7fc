package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/database/spells"
	"github.com/spellbook-app/spellbook/internal/entities"
)

// Public profile page sizes.
const (
	profileSpellLimit     = 12
	profileSpellbookLimit = 12
)

// PublicUser is the slice of an account anyone may see.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio"`
	Website   string    `json:"website"`
	Github    string    `json:"github"`
	Twitter   string    `json:"twitter"`
	Image     string    `json:"image"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicProfileResponse is the body of GET /api/users/:username.
type PublicProfileResponse struct {
	User       PublicUser           `json:"user"`
	Count      entities.UserCounts  `json:"_count"`
	Spells     []entities.Spell     `json:"spells"`
	Spellbooks []entities.Spellbook `json:"spellbooks"`
}

// UsersController serves public profiles.
type UsersController struct {
	users      UserStore
	spells     SpellStore
	spellbooks SpellbookStore
	logger     *zap.Logger
}

// NewUsersController creates a new public profile controller.
func NewUsersController(users UserStore, spells SpellStore, spellbooks SpellbookStore, logger *zap.Logger) *UsersController {
	return &UsersController{users: users, spells: spells, spellbooks: spellbooks, logger: logger}
}

// Profile returns a user's public details, most viewed public spells and most
// recently updated public spellbooks. A leading "@" is ignored.
// GET /api/users/:username
func (uc *UsersController) Profile(c *gin.Context) {
	username := strings.TrimPrefix(c.Param("username"), "@")

	user, err := uc.users.GetByUsername(username)
	if err != nil {
		respondDomainError(c, uc.logger, err, "User", "Failed to fetch user")
		return
	}
	counts, err := uc.users.Counts(user.ID)
	if err != nil {
		respondInternalError(c, uc.logger, err, "Failed to fetch user")
		return
	}
	topSpells, err := uc.spells.ListPublic(spells.PublicFilter{
		UserID: user.ID,
		Order:  spells.OrderViews,
		Limit:  profileSpellLimit,
	})
	if err != nil {
		respondInternalError(c, uc.logger, err, "Failed to fetch user")
		return
	}
	books, err := uc.spellbooks.ListPublic(user.ID, profileSpellbookLimit)
	if err != nil {
		respondInternalError(c, uc.logger, err, "Failed to fetch user")
		return
	}
	if topSpells == nil {
		topSpells = []entities.Spell{}
	}
	if books == nil {
		books = []entities.Spellbook{}
	}

	c.JSON(http.StatusOK, PublicProfileResponse{
		User: PublicUser{
			ID:        user.ID,
			Name:      user.Name,
			Username:  user.Username,
			Bio:       user.Bio,
			Website:   user.Website,
			Github:    user.Github,
			Twitter:   user.Twitter,
			Image:     user.Image,
			IsPublic:  user.IsPublic,
			CreatedAt: user.CreatedAt,
		},
		Count:      counts,
		Spells:     topSpells,
		Spellbooks: books,
	})
}
