package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SubmissionFeedChannel returns the Redis PubSub channel carrying new submission events
func (r *CacheKeyStruct) SubmissionFeedChannel() string {
	return "assessments:feed"
}

// NotificationQueueKey returns the Redis list backing a notification queue
func (r *CacheKeyStruct) NotificationQueueKey(queue string) string {
	return fmt.Sprintf("queue:%s", queue)
}

var CacheKey = NewCacheKeyStruct()
