package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	PostKeyPrefix       = "post:%d"
	PostPageKeyPrefix   = "posts:page:%d:%d"
	CartKeyPrefix       = "cart:%d"
	StylerPrefsPrefix   = "styler:prefs:%d"
	TrendingItemsKey    = "styler:trending"
	PresenceKeyPrefix   = "presence:user:%d"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	PostPageTTL    = 1 * time.Minute
	CartTTL        = 2 * time.Minute
	StylerPrefsTTL = 10 * time.Minute
	TrendingTTL    = 15 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func PostPageKey(page, pageSize int) string {
	return fmt.Sprintf(PostPageKeyPrefix, page, pageSize)
}

func CartKey(userID uint) string {
	return fmt.Sprintf(CartKeyPrefix, userID)
}

func StylerPrefsKey(userID uint) string {
	return fmt.Sprintf(StylerPrefsPrefix, userID)
}

func PresenceKey(userID uint) string {
	return fmt.Sprintf(PresenceKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateCart(ctx context.Context, userID uint) {
	Invalidate(ctx, CartKey(userID))
}

func InvalidateStylerPrefs(ctx context.Context, userID uint) {
	Invalidate(ctx, StylerPrefsKey(userID))
}
