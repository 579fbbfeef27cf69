package base

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

type CheckOptions struct {
	// Check name
	Name string
	// CheckFunc reports whether the owning enity is ready to serve. A nil
	// return means ready.
	CheckFunc func(ctx context.Context) error
}

type MapCheckOptions struct {
	mu      sync.RWMutex
	options map[string]*CheckOptions
}

func NewMapCheckOptions() *MapCheckOptions {
	return &MapCheckOptions{
		options: make(map[string]*CheckOptions),
	}
}

func (mco *MapCheckOptions) Add(options *CheckOptions) error {
	mco.mu.Lock()
	defer mco.mu.Unlock()

	if options == nil {
		return ErrOptionsIsNil
	}

	if options.Name == "" {
		return ErrEmptyOptionsName
	}

	if options.CheckFunc == nil {
		return ErrFuncIsNil
	}

	if _, ok := mco.options[options.Name]; ok {
		return errors.Wrapf(ErrConflictName, "name: %s", options.Name)
	}

	mco.options[options.Name] = options

	return nil
}

func (mco *MapCheckOptions) Append(src *MapCheckOptions) error {
	src.mu.RLock()
	defer src.mu.RUnlock()

	for _, m := range src.options {
		if err := mco.Add(m); err != nil {
			return errors.Wrap(err, "add check")
		}
	}

	return nil
}

// Check runs every registered check and returns the first failure, tagged
// with the check name.
func (mco *MapCheckOptions) Check(ctx context.Context) error {
	mco.mu.RLock()
	defer mco.mu.RUnlock()

	for name, options := range mco.options {
		if err := options.CheckFunc(ctx); err != nil {
			return errors.Wrapf(err, "check %q", name)
		}
	}

	return nil
}

type ReadyCheckStorage struct {
	readyCheck *MapCheckOptions
}

func NewReadyCheckStorage() *ReadyCheckStorage {
	return &ReadyCheckStorage{
		readyCheck: NewMapCheckOptions(),
	}
}

func (s *ReadyCheckStorage) GetReadyHandlers() *MapCheckOptions {
	return s.readyCheck
}
