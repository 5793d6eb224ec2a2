package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSignup "github.com/MrEthical07/goSignup"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		ops         = flag.Int("ops", 100000, "signups per phase (register + confirm)")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		realHash    = flag.Bool("argon2", false, "use real argon2id hashing instead of a stub hasher")
	)
	flag.Parse()

	if *ops <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "ops and concurrency must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  *redis.Client
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := goSignup.DefaultConfig()
	// Throttles would trip immediately under synthetic per-IP load.
	cfg.Signup.Enforce = false

	mailer := &captureMailer{tokens: make(map[string]string, *ops)}

	builder := goSignup.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserStore(&memoryUserStore{users: make(map[string]struct{}, *ops)}).
		WithCaptchaVerifier(allowCaptcha{}).
		WithHistoryStore(emptyHistory{}).
		WithReputationService(cleanReputation{}).
		WithUserAgentClassifier(plainUserAgents{}).
		WithConfirmationMailer(mailer)
	if !*realHash {
		builder = builder.WithPasswordHasher(stubHasher{})
	}

	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	registerStats := runRegisterPhase(ctx, engine, *ops, *concurrency)
	confirmStats := runConfirmPhase(ctx, engine, mailer.drain(), *concurrency)

	fmt.Println("---- results ----")
	printStats("register", registerStats)
	printStats("confirm", confirmStats)
}

func runRegisterPhase(ctx context.Context, engine *goSignup.Engine, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				reqCtx := goSignup.WithClientIP(ctx, fmt.Sprintf("10.%d.%d.%d", worker%250, (i/250)%250, i%250))
				reqCtx = goSignup.WithUserAgent(reqCtx, "loadtest/1.0")

				t0 := time.Now()
				// No fingerprint, so every signup lands on the confirmation path
				// and the confirm phase has tokens to consume.
				res, err := engine.RegisterWeb(reqCtx, goSignup.Candidate{
					Username:     fmt.Sprintf("user_%d", i),
					Password:     "loadtest-password",
					Email:        fmt.Sprintf("user_%d@example.com", i),
					CaptchaToken: "ok",
				})
				d := time.Since(t0)
				if err != nil || res.Kind != goSignup.ResultPendingConfirmation {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runConfirmPhase(ctx context.Context, engine *goSignup.Engine, tokens []string, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, len(tokens))
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(tokens) {
					return
				}
				t0 := time.Now()
				_, err := engine.ConfirmSignup(ctx, tokens[i])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

type memoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]struct{}
}

func (s *memoryUserStore) CreateUser(_ context.Context, input goSignup.CreateUserInput) (goSignup.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[input.Username]; ok {
		return goSignup.Account{}, goSignup.ErrStoreDuplicate
	}
	s.users[input.Username] = struct{}{}
	s.nextID++
	return goSignup.Account{
		AccountID:        fmt.Sprintf("acct-%d", s.nextID),
		Username:         input.Username,
		MustConfirmEmail: input.MustConfirmEmail,
	}, nil
}

func (s *memoryUserStore) ActivateUser(context.Context, string) error { return nil }

type allowCaptcha struct{}

func (allowCaptcha) Verify(context.Context, string, string) (bool, error) { return true, nil }

type emptyHistory struct{}

func (emptyHistory) RecentSignupByIP(context.Context, string) (bool, error) { return false, nil }
func (emptyHistory) RecentSignupByFingerprint(context.Context, string) (bool, error) {
	return false, nil
}

type cleanReputation struct{}

func (cleanReputation) IsSuspicious(context.Context, string) (bool, error) { return false, nil }

type plainUserAgents struct{}

func (plainUserAgents) IsWeird(string) bool { return false }

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "$stub$" + password, nil
}

type captureMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *captureMailer) Send(_ context.Context, account goSignup.Account, _ goSignup.AcceptableEmail, token string) error {
	m.mu.Lock()
	m.tokens[account.AccountID] = token
	m.mu.Unlock()
	return nil
}

func (m *captureMailer) drain() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.tokens))
	for _, tok := range m.tokens {
		out = append(out, tok)
	}
	return out
}
