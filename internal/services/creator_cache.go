package services

import (
	"context"
	"time"

	"votemate/internal/models"
	"votemate/internal/utils"

	"gorm.io/gorm"
)

// Creator is the public identity attached to a poll.
type Creator struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// CreatorCache resolves poll creators. Users cannot be renamed or deleted, so
// entries only leave through LRU eviction or TTL.
type CreatorCache struct {
	db    *gorm.DB
	cache *utils.Cache[Creator]
}

func NewCreatorCache(db *gorm.DB, size int, ttl time.Duration) (*CreatorCache, error) {
	c, err := utils.NewCache[Creator](size, ttl)
	if err != nil {
		return nil, err
	}
	return &CreatorCache{db: db, cache: c}, nil
}

func (c *CreatorCache) Remember(creator Creator) {
	c.cache.Set(creator.ID, creator)
}

// Lookup returns the creators for ids. Unknown ids are absent from the result.
func (c *CreatorCache) Lookup(ctx context.Context, ids []string) (map[string]Creator, error) {
	found := make(map[string]Creator, len(ids))
	var missing []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if creator, ok := c.cache.Get(id); ok {
			found[id] = creator
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return found, nil
	}

	var users []models.User
	if err := c.db.WithContext(ctx).Select("id", "username").Where("id IN ?", missing).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		creator := Creator{ID: u.ID, Username: u.Username}
		c.cache.Set(u.ID, creator)
		found[u.ID] = creator
	}
	return found, nil
}
