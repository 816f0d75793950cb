package redis

import (
	"fmt"

	"github.com/mcoot/couplobby/internal/model"
)

// Key prefix for all room data
const keyPrefix = "couplobby"

// roomKey returns the Redis key for a Room
func roomKey(token model.RoomToken) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, token)
}
