package redisx

import (
	"fmt"
	"time"
)

// Cache keys are a deterministic function of the query parameters so that the
// same query always hits the same entry. Invalidation deletes the whole
// "<entity>:" prefix, which covers both list and by-id entries.

var TTLQuery = 5 * time.Minute

func KeyFindByID(entity string, id int) string {
	return fmt.Sprintf("%s:find_by_id:%d", entity, id)
}

func KeyList(entity, op string, page, pageSize int, search string) string {
	return fmt.Sprintf("%s:%s:page:%d:size:%d:search:%s", entity, op, page, pageSize, search)
}

func Prefix(entity string) string { return entity + ":" }
