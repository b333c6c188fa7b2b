package deps

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/depman/pkg/version"
)

// fakeBackend is an in-memory Backend that counts registry calls.
type fakeBackend struct {
	mu       sync.Mutex
	cfg      *Config
	cfgErr   error
	lock     Lockfile
	infos    map[string]*DepInfo
	fail     map[string]bool
	block    map[string]bool // wait for ctx cancellation
	delay    time.Duration
	calls    map[string]int
	inflight atomic.Int32
	peak     atomic.Int32
	installs []InstallCandidate
	deletes  []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		cfg:   &Config{},
		lock:  Lockfile{},
		infos: map[string]*DepInfo{},
		fail:  map[string]bool{},
		block: map[string]bool{},
		calls: map[string]int{},
	}
}

func (f *fakeBackend) Kind() Kind                          { return KindNpm }
func (f *fakeBackend) Detect(string) bool                  { return true }
func (f *fakeBackend) ParseConfig(string) (*Config, error) { return f.cfg, f.cfgErr }
func (f *fakeBackend) ParseLockfile(string) Lockfile       { return f.lock }

func (f *fakeBackend) FetchDepInfo(ctx context.Context, name string) (*DepInfo, error) {
	f.mu.Lock()
	f.calls[name]++
	info, ok := f.infos[name]
	failing, blocking := f.fail[name], f.block[name]
	f.mu.Unlock()

	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if blocking {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if failing || !ok {
		return nil, fmt.Errorf("fetch %s: boom", name)
	}
	return info, nil
}

func (f *fakeBackend) Search(_ context.Context, term string) ([]SearchResult, error) {
	return []SearchResult{{Name: term, Version: "1.0.0"}}, nil
}

func (f *fakeBackend) Install(c InstallCandidate, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs = append(f.installs, c)
	return nil
}

func (f *fakeBackend) Delete(group, name, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cfg.Group(group); !ok {
		return fmt.Errorf("no group %s", group)
	}
	f.deletes = append(f.deletes, group+"/"+name)
	return nil
}

func (f *fakeBackend) callsFor(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// info builds a DepInfo with versions given in any order.
func info(name string, versions ...string) *DepInfo {
	return &DepInfo{Kind: KindNpm, Name: name, Versions: version.ParseAll(versions)}
}

func group(name string, deps ...Dep) Group {
	return Group{Name: name, Deps: deps}
}

func dep(name, req string) Dep {
	return Dep{Name: name, Requirement: version.ParseRequirement(req, version.Npm)}
}
