package common

import "fmt"

// RedisKeyCaptureLock guards a paid post creation against double submission.
func RedisKeyCaptureLock(userID, idempotencyKey string) string {
	return fmt.Sprintf("reward:capture:%s:%s", userID, idempotencyKey)
}
