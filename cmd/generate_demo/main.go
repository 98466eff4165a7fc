// Command generate_demo creates a demo database with sample spells, runes and
// spellbooks, optionally building its search index too.
// Usage: go run ./cmd/generate_demo [-db path/to/demo.db] [-index path/to/index]
package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/database/favorites"
	"github.com/spellbook-app/spellbook/internal/database/runes"
	"github.com/spellbook-app/spellbook/internal/database/spellbooks"
	"github.com/spellbook-app/spellbook/internal/database/spells"
	"github.com/spellbook-app/spellbook/internal/database/users"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/id"
	"github.com/spellbook-app/spellbook/internal/search"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"
	demoPassword            = "spellbook-demo"
)

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	indexDir := flag.String("index", "", "also build a search index in this directory")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), config.Auth{})
	wizards := make(map[string]*entities.User)
	for _, w := range demoWizards() {
		user, err := service.Register(w)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", w.Username, err)
		}
		wizards[user.Username] = user
		log.Printf("Created @%s (password %q)", user.Username, demoPassword)
	}

	bookRepo := spellbooks.NewRepository(db.DB)
	spellRepo := spells.NewRepository(db.DB)
	var favoriteTargets []string

	for _, cfg := range demoSpellbooks() {
		owner := wizards[cfg.Owner]
		book := &entities.Spellbook{
			ID:          id.MustGenerate(id.PrefixSpellbook),
			Name:        cfg.Name,
			Description: cfg.Description,
			IsPublic:    cfg.Public,
			Tags:        cfg.Tags,
			UserID:      owner.ID,
		}
		if err := bookRepo.Create(book); err != nil {
			log.Printf("Failed to save spellbook %s: %v", cfg.Name, err)
			continue
		}

		for i := range cfg.Spells {
			spell := cfg.Spells[i]
			spell.ID = id.MustGenerate(id.PrefixSpell)
			spell.UserID = owner.ID
			spell.SpellbookID = &book.ID
			if spell.Tags == nil {
				spell.Tags = []string{}
			}
			if err := spellRepo.Create(&spell); err != nil {
				log.Printf("Failed to save spell %s: %v", spell.Title, err)
				continue
			}
			if spell.IsPublic {
				favoriteTargets = append(favoriteTargets, spell.ID)
			}
		}
		log.Printf("Saved: %s by @%s (%d spells)", book.Name, owner.Username, len(cfg.Spells))
	}

	runeRepo := runes.NewRepository(db.DB)
	for _, r := range demoRunes() {
		r.ID = id.MustGenerate(id.PrefixRune)
		r.UserID = wizards["archmage"].ID
		if err := runeRepo.Create(&r); err != nil {
			log.Printf("Failed to save rune %s: %v", r.Title, err)
		}
	}

	// The apprentice favorites every public spell.
	favoriteRepo := favorites.NewRepository(db.DB)
	for _, spellID := range favoriteTargets {
		if _, err := favoriteRepo.Add(wizards["apprentice"].ID, spellID); err != nil {
			log.Printf("Failed to favorite %s: %v", spellID, err)
		}
	}

	if *indexDir != "" {
		index, err := search.Open(search.Options{Path: *indexDir})
		if err != nil {
			log.Fatalf("Failed to open search index: %v", err)
		}
		n, err := index.Reindex(db.DB)
		index.Close()
		if err != nil {
			log.Fatalf("Failed to build search index: %v", err)
		}
		log.Printf("Indexed %d documents in %s", n, *indexDir)
	}

	log.Println("Demo database generated successfully!")
}

func demoWizards() []auth.RegisterInput {
	return []auth.RegisterInput{
		{Email: "archmage@example.com", Password: demoPassword, Name: "The Archmage", Username: "archmage"},
		{Email: "apprentice@example.com", Password: demoPassword, Name: "Apprentice", Username: "apprentice"},
	}
}

// SpellbookConfig holds a spellbook and the spells filed in it.
type SpellbookConfig struct {
	Owner       string
	Name        string
	Description string
	Public      bool
	Tags        []string
	Spells      []entities.Spell
}

func demoSpellbooks() []SpellbookConfig {
	return []SpellbookConfig{
		{
			Owner:       "archmage",
			Name:        "Sorting Incantations",
			Description: "Classic sorting algorithms, one per language.",
			Public:      true,
			Tags:        []string{"algorithms"},
			Spells: []entities.Spell{
				{
					Title:       "Quick sort",
					Description: "In-place quick sort with Lomuto partitioning.",
					Language:    "go",
					IsPublic:    true,
					Tags:        []string{"sorting", "recursion"},
					Code: `func quickSort(a []int) {
	if len(a) < 2 {
		return
	}
	p := len(a) - 1
	i := 0
	for j := 0; j < p; j++ {
		if a[j] < a[p] {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[p] = a[p], a[i]
	quickSort(a[:i])
	quickSort(a[i+1:])
}`,
				},
				{
					Title:       "Merge sort",
					Description: "Stable merge sort returning a new list.",
					Language:    "python",
					IsPublic:    true,
					Tags:        []string{"sorting"},
					Code: `def merge_sort(xs):
    if len(xs) <= 1:
        return xs
    mid = len(xs) // 2
    left, right = merge_sort(xs[:mid]), merge_sort(xs[mid:])
    out = []
    while left and right:
        out.append(left.pop(0) if left[0] <= right[0] else right.pop(0))
    return out + left + right`,
				},
				{
					Title:    "Insertion sort draft",
					Language: "javascript",
					IsPublic: false,
					Code: `function insertionSort(a) {
  for (let i = 1; i < a.length; i++) {
    for (let j = i; j > 0 && a[j - 1] > a[j]; j--) {
      [a[j - 1], a[j]] = [a[j], a[j - 1]];
    }
  }
  return a;
}`,
				},
			},
		},
		{
			Owner:       "archmage",
			Name:        "Queries of Power",
			Description: "SQL that answers real questions.",
			Public:      true,
			Tags:        []string{"sql"},
			Spells: []entities.Spell{
				{
					Title:       "Top spells by views",
					Description: "The ten most viewed public spells.",
					Language:    "sql",
					IsPublic:    true,
					Code:        "SELECT title, views FROM spells WHERE is_public = 1 ORDER BY views DESC LIMIT 10;",
				},
			},
		},
		{
			Owner:       "apprentice",
			Name:        "Practice Scrolls",
			Description: "Work in progress.",
			Public:      false,
			Spells: []entities.Spell{
				{
					Title:    "Hello, world",
					Language: "rust",
					IsPublic: true,
					Code:     `fn main() { println!("Hello, world!"); }`,
				},
			},
		},
	}
}

func demoRunes() []entities.Rune {
	return []entities.Rune{
		{
			Title:       "Glowing button",
			Description: "A button with a pulsing glow on hover.",
			HTML:        `<button class="glow">Cast</button>`,
			CSS: `.glow { padding: .6rem 1.2rem; border: 0; border-radius: 6px; background: #6d28d9; color: #fff; }
.glow:hover { box-shadow: 0 0 12px #a78bfa; }`,
			IsPublic: true,
			Tags:     []string{"button", "css"},
		},
		{
			Title:      "Click counter",
			HTML:       `<button id="c">Clicked 0 times</button>`,
			JavaScript: `let n = 0; const b = document.getElementById('c'); b.onclick = () => { b.textContent = 'Clicked ' + (++n) + ' times'; };`,
			IsPublic:   true,
			Tags:       []string{"javascript"},
		},
	}
}
