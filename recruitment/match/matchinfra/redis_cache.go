package matchinfra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/pkg/logx"
	"github.com/Abraxas-365/talentmatch/recruitment/match"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "match:result:"
	genPrefix = "match:gen:"
)

// errStaleFill reports that the backing row was replaced while it was being read
var errStaleFill = errors.New("match result changed during read-through")

// RedisCache keeps a hot copy of match results in Redis in front of a durable
// cache. The backing cache is authoritative; Redis failures only cost latency.
//
// Every write to the backing cache bumps a per-job generation and drops the hot
// copy. A read-through only fills the hot copy when the generation it saw before
// reading the backing cache is still current.
type RedisCache struct {
	client  *redis.Client
	backing match.Cache
	ttl     time.Duration
}

var _ match.Cache = (*RedisCache)(nil)

// NewRedisCache wraps backing. A ttl of zero keeps hot copies until replaced.
func NewRedisCache(client *redis.Client, backing match.Cache, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
	}
}

func cacheKey(jobID kernel.JobID) string {
	return keyPrefix + jobID.String()
}

func genKey(jobID kernel.JobID) string {
	return genPrefix + jobID.String()
}

func (c *RedisCache) Get(ctx context.Context, jobID kernel.JobID) (*match.MatchResult, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(jobID)).Bytes()
	switch {
	case err == nil:
		var result match.MatchResult
		uerr := json.Unmarshal(data, &result)
		if uerr == nil {
			return &result, true, nil
		}
		logx.Warnf("Discarding unreadable hot match result for job %s: %v", jobID, uerr)
	case errors.Is(err, redis.Nil):
	default:
		logx.Warnf("Redis match cache read failed for job %s: %v", jobID, err)
	}

	// The generation must be read before the backing row
	gen, genErr := c.generation(ctx, jobID)

	result, ok, err := c.backing.Get(ctx, jobID)
	if err != nil || !ok {
		return result, ok, err
	}

	if genErr == nil {
		c.fillHot(ctx, result, gen)
	}
	return result, true, nil
}

// Upsert writes the backing cache, then invalidates the hot copy. The next read
// repopulates it.
func (c *RedisCache) Upsert(ctx context.Context, result *match.MatchResult) error {
	err := c.backing.Upsert(ctx, result)
	c.invalidateHot(ctx, result.JobID)
	return err
}

func (c *RedisCache) Delete(ctx context.Context, jobID kernel.JobID) error {
	err := c.backing.Delete(ctx, jobID)
	c.invalidateHot(ctx, jobID)
	return err
}

func (c *RedisCache) generation(ctx context.Context, jobID kernel.JobID) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(jobID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		logx.Warnf("Redis match generation read failed for job %s: %v", jobID, err)
		return 0, err
	}
	return gen, nil
}

// fillHot stores result as the hot copy unless a write happened since gen was read
func (c *RedisCache) fillHot(ctx context.Context, result *match.MatchResult, gen int64) {
	data, err := json.Marshal(result)
	if err != nil {
		logx.Warnf("Could not encode match result for job %s: %v", result.JobID, err)
		return
	}

	gk := genKey(result.JobID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(result.JobID), data, c.ttl)
			return nil
		})
		return err
	}, gk)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		logx.Debugf("Skipped hot match fill for job %s: a newer write exists", result.JobID)
	default:
		logx.Warnf("Redis match cache write failed for job %s: %v", result.JobID, err)
	}
}

// invalidateHot bumps the job generation and drops the hot copy atomically
func (c *RedisCache) invalidateHot(ctx context.Context, jobID kernel.JobID) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(jobID))
		pipe.Del(ctx, cacheKey(jobID))
		return nil
	})
	if err != nil {
		logx.Warnf("Redis match cache invalidation failed for job %s: %v", jobID, err)
	}
}
