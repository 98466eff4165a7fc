// Package interfaces lists the seams between packages and pins their
// implementations with compile-time checks (see checks.go).
//
// # HTTP stores (internal/http/stores.go)
//
//   - SpellStore, SpellbookStore, RuneStore, FavoriteStore, UserStore: the
//     repositories under internal/database.
//   - StampLister: public spells and spellbooks for the sitemap.
//   - PasswordChanger: auth.Service.
//   - Auditor, AuditReader: audit.Service.
//   - ContentIndex: tasks.IndexNotifier, which queues search updates.
//   - Searcher, IndexCounter: search.Index.
//
// # Background work
//
//   - tasks.ContentIndexer: search.Index, driven by the index queues.
//   - tasks.AuditEventCleaner: audit.Service, driven by cleanup_audit.
//   - scheduler.Enqueuer: tasks.Client, used by cron jobs to enqueue work.
//
// # Adding a Content Type
//
//  1. Add the model to internal/entities and to the migration list in
//     internal/database.
//  2. Create internal/database/<type> with a Repository.
//  3. Declare the store interface the controller needs in internal/http and
//     add a check to checks.go.
//  4. If it is searchable, add a search.DocType and load it in
//     search.LoadOne and search.LoadPublic.
//
// A check for a new store looks like:
//
//	var _ http.WidgetStore = (*widgets.Repository)(nil)
package interfaces
