package matchsrv

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/Abraxas-365/talentmatch/internal/ai/similarity"
	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/pkg/logx"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
	"github.com/Abraxas-365/talentmatch/recruitment/job"
	"github.com/Abraxas-365/talentmatch/recruitment/match"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Options bound the cost of a ranking computation
type Options struct {
	PoolCap      int
	BatchSize    int
	MinScore     float64
	TopK         int
	Workers      int
	EmbedTimeout time.Duration
	// ComputeTimeout bounds a shared computation, which outlives the request
	// that started it
	ComputeTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		PoolCap:        1000,
		BatchSize:      100,
		MinScore:       0.1,
		TopK:           10,
		Workers:        4,
		EmbedTimeout:   15 * time.Second,
		ComputeTimeout: 2 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PoolCap < 1 {
		o.PoolCap = d.PoolCap
	}
	if o.BatchSize < 1 {
		o.BatchSize = d.BatchSize
	}
	if o.TopK < 1 {
		o.TopK = d.TopK
	}
	if o.Workers < 1 {
		o.Workers = d.Workers
	}
	if o.ComputeTimeout <= 0 {
		o.ComputeTimeout = d.ComputeTimeout
	}
	return o
}

// Ranker ranks the candidate pool of a job by cosine similarity and caches the
// top results per job
type Ranker struct {
	jobs     job.Reader
	pool     candidate.PoolReader
	cache    match.Cache
	embedder match.Embedder
	fallback *FallbackSearch
	opts     Options
	flights  singleflight.Group
	now      func() time.Time
}

func NewRanker(
	jobs job.Reader,
	pool candidate.PoolReader,
	cache match.Cache,
	embedder match.Embedder,
	opts Options,
) *Ranker {
	return &Ranker{
		jobs:     jobs,
		pool:     pool,
		cache:    cache,
		embedder: embedder,
		fallback: NewFallbackSearch(pool),
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// outcome is what one ranking computation produces. It is shared by every
// caller collapsed into the same flight.
type outcome struct {
	job         *job.Job
	result      *match.MatchResult
	useFallback bool
}

// Rank returns a page of the job's ranked candidates. Provider and pool failures
// degrade to keyword search; only a missing job or a cancelled request fail.
func (r *Ranker) Rank(ctx context.Context, req match.RankRequest) (*match.RankResponse, error) {
	if req.JobID.IsEmpty() {
		return nil, match.ErrInvalidRequest().WithDetail("job_id", "missing or empty")
	}
	pagination := req.Pagination().Normalize()

	if !req.ForceRecompute {
		if cached, ok := r.probeCache(ctx, req.JobID); ok {
			return match.NewRankResponse(cached, pagination, true), nil
		}
	}

	// The flight runs detached from any single caller. Each caller waits on its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := r.flights.DoChan(req.JobID.String(), func() (any, error) {
		cctx, cancel := context.WithTimeout(flightCtx, r.opts.ComputeTimeout)
		defer cancel()
		return r.compute(cctx, req.JobID, req.Filters)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, match.ErrRegistry.NewWithCause(match.CodeRankingAborted, ctx.Err()).WithDetail("job_id", req.JobID)
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		logx.Debugf("Ranking for job %s shared with a concurrent request", req.JobID)
	}

	out := res.Val.(*outcome)
	if out.useFallback {
		query := req.Query
		if query == "" {
			query = string(out.job.Title)
		}
		page := r.fallback.Search(ctx, req.Filters, query, pagination)
		return match.NewFallbackResponse(page), nil
	}

	return match.NewRankResponse(out.result, pagination, false), nil
}

// Invalidate drops the cached ranking of a job so the next request recomputes it
func (r *Ranker) Invalidate(ctx context.Context, jobID kernel.JobID) error {
	if jobID.IsEmpty() {
		return match.ErrInvalidRequest().WithDetail("job_id", "missing or empty")
	}
	if err := r.cache.Delete(ctx, jobID); err != nil {
		return match.ErrRegistry.NewWithCause(match.CodeCacheFailed, err).WithDetail("job_id", jobID)
	}
	logx.Infof("Match cache invalidated for job %s", jobID)
	return nil
}

func (r *Ranker) probeCache(ctx context.Context, jobID kernel.JobID) (*match.MatchResult, bool) {
	cached, ok, err := r.cache.Get(ctx, jobID)
	if err != nil {
		logx.Warnf("Match cache read failed for job %s, recomputing: %v", jobID, err)
		return nil, false
	}
	if !ok || cached == nil {
		return nil, false
	}
	return cached, true
}

func (r *Ranker) compute(ctx context.Context, jobID kernel.JobID, filters candidate.Filters) (*outcome, error) {
	j, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	query, err := r.embed(ctx, j.QueryText())
	if err != nil {
		logx.Warnf("Falling back to keyword search for job %s: %v", jobID, err)
		return &outcome{job: j, useFallback: true}, nil
	}

	profiles, err := r.pool.FindPool(ctx, filters, r.opts.PoolCap+1)
	if err != nil {
		logx.Warnf("Falling back to keyword search for job %s: %v",
			jobID, match.ErrRegistry.NewWithCause(match.CodePoolReadFailed, err))
		return &outcome{job: j, useFallback: true}, nil
	}

	if len(profiles) > r.opts.PoolCap {
		capErr := match.ErrPoolCapExceeded().
			WithDetail("job_id", jobID).
			WithDetail("pool_cap", r.opts.PoolCap)
		logx.Warn(capErr.Message,
			"code", capErr.Code,
			"job_id", jobID.String(),
			"pool_cap", r.opts.PoolCap,
		)
		profiles = profiles[:r.opts.PoolCap]
	}

	result := &match.MatchResult{
		JobID:            jobID,
		JobEmbedding:     query,
		RankedCandidates: []match.RankedCandidate{},
		AnalyzedAt:       r.now().UTC(),
		JobSnapshot:      j.Snapshot(),
	}

	// Empty pools are returned but never cached
	if len(profiles) == 0 {
		return &outcome{job: j, result: result}, nil
	}

	scored, err := r.score(ctx, query, profiles)
	if err != nil {
		return nil, match.ErrRegistry.NewWithCause(match.CodeRankingAborted, err).WithDetail("job_id", jobID)
	}

	slices.SortStableFunc(scored, func(a, b match.RankedCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(scored) > r.opts.TopK {
		scored = scored[:r.opts.TopK]
	}
	result.RankedCandidates = scored

	if err := r.cache.Upsert(ctx, result); err != nil {
		logx.Warnf("Match cache write failed for job %s: %v", jobID, err)
	}

	logx.Infof("Ranked job %s: pool=%d kept=%d", jobID, len(profiles), len(scored))
	return &outcome{job: j, result: result}, nil
}

func (r *Ranker) embed(ctx context.Context, text string) (kernel.Embedding, error) {
	if r.opts.EmbedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.EmbedTimeout)
		defer cancel()
	}

	vector, err := r.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, match.ErrRegistry.NewWithCause(match.CodeEmbeddingFailed, err)
	}
	if len(vector) == 0 {
		return nil, match.ErrRegistry.NewWithCause(match.CodeEmbeddingFailed, errors.New("empty embedding"))
	}
	return vector, nil
}

// score computes similarities batch by batch on a bounded pool of goroutines.
// Each batch writes to its own slot so the output keeps pool order.
func (r *Ranker) score(ctx context.Context, query kernel.Embedding, profiles []candidate.Profile) ([]match.RankedCandidate, error) {
	dim := len(query)
	size := r.opts.BatchSize
	batches := (len(profiles) + size - 1) / size
	results := make([][]match.RankedCandidate, batches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i := 0; i < batches; i++ {
		if gctx.Err() != nil {
			break
		}
		batch := profiles[i*size : min((i+1)*size, len(profiles))]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.scoreBatch(query, dim, batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := make([]match.RankedCandidate, 0)
	for _, batch := range results {
		scored = append(scored, batch...)
	}
	return scored, nil
}

func (r *Ranker) scoreBatch(query kernel.Embedding, dim int, batch []candidate.Profile) []match.RankedCandidate {
	out := make([]match.RankedCandidate, 0, len(batch))
	for k := range batch {
		p := &batch[k]
		// Wrong-length vectors count as absent
		if !p.HasEmbedding(dim) {
			continue
		}
		s, err := similarity.CosineSimilarity(query, p.Embedding)
		if err != nil {
			continue
		}
		if s > r.opts.MinScore {
			out = append(out, match.NewRankedCandidate(p, s))
		}
	}
	return out
}


