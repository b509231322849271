package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"driveclone/models"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrCacheMiss = errors.New("cache miss")

// FolderCache holds folder documents by id for the path resolver.
type FolderCache interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Folder, error)
	Set(ctx context.Context, folder *models.Folder) error
	Delete(ctx context.Context, ids ...primitive.ObjectID) error
}

const folderCachePrefix = "driveclone:folder:"

func folderCacheKey(id primitive.ObjectID) string {
	return folderCachePrefix + id.Hex()
}

type RedisFolderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisFolderCache(rdb *redis.Client, ttl time.Duration) *RedisFolderCache {
	return &RedisFolderCache{rdb: rdb, ttl: ttl}
}

func (c *RedisFolderCache) Get(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	raw, err := c.rdb.Get(ctx, folderCacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var folder models.Folder
	if err := json.Unmarshal(raw, &folder); err != nil {
		return nil, fmt.Errorf("decode cached folder: %w", err)
	}
	return &folder, nil
}

func (c *RedisFolderCache) Set(ctx context.Context, folder *models.Folder) error {
	raw, err := json.Marshal(folder)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, folderCacheKey(folder.ID), raw, c.ttl).Err()
}

func (c *RedisFolderCache) Delete(ctx context.Context, ids ...primitive.ObjectID) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, folderCacheKey(id))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// NopFolderCache is used when no Redis address is configured.
type NopFolderCache struct{}

func (NopFolderCache) Get(context.Context, primitive.ObjectID) (*models.Folder, error) {
	return nil, ErrCacheMiss
}

func (NopFolderCache) Set(context.Context, *models.Folder) error { return nil }

func (NopFolderCache) Delete(context.Context, ...primitive.ObjectID) error { return nil }
