package config

import (
	"fmt"

	"github.com/smartquizzer/quizzer-backend/internal/model"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// Questions returns the cache key for the generated question set of a content
// at one difficulty.
func (r *CacheKeyStruct) Questions(contentID int64, difficulty model.Difficulty) string {
	return fmt.Sprintf("questions:%d:%s", contentID, difficulty)
}

// Analytics returns the cache key for a user's analytics rollup.
func (r *CacheKeyStruct) Analytics(userID int64) string {
	return fmt.Sprintf("analytics:%d", userID)
}

var CacheKey = NewCacheKeyStruct()
