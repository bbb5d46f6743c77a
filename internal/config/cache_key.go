package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuestionSetKey returns the cache key for a resolved question list.
// digest identifies the filter that produced it.
func (r *CacheKeyStruct) QuestionSetKey(digest string) string {
	return fmt.Sprintf("questions:set:%s", digest)
}

var CacheKey = NewCacheKeyStruct()
