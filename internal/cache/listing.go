package cache

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// AdminOwner is the key space used for the cross-tenant admin listing.
// Real owner ids start at 1, so it never collides.
const AdminOwner int64 = 0

// Listing memoizes paginated task listings for a short window. Every
// mutating task operation must call Invalidate for the affected owner,
// otherwise listings go stale for up to the TTL.
type Listing struct {
	ttl   time.Duration
	store *gocache.Cache
}

func NewListing(ttl time.Duration) *Listing {
	return &Listing{
		ttl:   ttl,
		store: gocache.New(ttl, 2*ttl),
	}
}

func listingKey(ownerID int64, page, limit int) string {
	return fmt.Sprintf("tasks:%d:%d:%d", ownerID, page, limit)
}

func (l *Listing) Get(ownerID int64, page, limit int) (any, bool) {
	return l.store.Get(listingKey(ownerID, page, limit))
}

func (l *Listing) Set(ownerID int64, page, limit int, value any) {
	l.store.Set(listingKey(ownerID, page, limit), value, l.ttl)
}

// Invalidate drops every cached page belonging to the owner, plus the
// admin listing which spans all owners.
func (l *Listing) Invalidate(ownerID int64) {
	ownerPrefix := fmt.Sprintf("tasks:%d:", ownerID)
	adminPrefix := fmt.Sprintf("tasks:%d:", AdminOwner)
	for key := range l.store.Items() {
		if strings.HasPrefix(key, ownerPrefix) || strings.HasPrefix(key, adminPrefix) {
			l.store.Delete(key)
		}
	}
}
