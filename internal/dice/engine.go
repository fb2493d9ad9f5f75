package dice

import (
	"fmt"

	"github.com/bluele/gcache"
)

// Env is the variable store an evaluation reads and writes. Values are the
// source text of stored expressions, not numbers.
type Env interface {
	Get(name string) (string, error)
	Set(name, value string)
}

// MapEnv is an Env over a plain map, handy for one-off evaluations.
type MapEnv map[string]string

func (m MapEnv) Get(name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%q is unset", name)
	}
	return v, nil
}

func (m MapEnv) Set(name, value string) {
	m[name] = value
}

const (
	DefaultMaxDice   = 1000
	DefaultMaxDepth  = 32
	DefaultCacheSize = 512
	DefaultMaxSteps  = 100000
)

// Option configures an Engine.
type Option func(*Engine)

// WithRoller replaces the source of randomness.
func WithRoller(r Roller) Option {
	return func(e *Engine) { e.roller = r }
}

// WithMaxDice caps the number of dice in a single roll.
func WithMaxDice(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDice = n
		}
	}
}

// WithMaxDepth caps how deeply variables may refer to other variables.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithMaxSteps caps the work of one evaluation, counted as expression nodes
// visited plus dice rolled.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithCacheSize sets how many parsed expressions are kept. Zero disables
// the cache.
func WithCacheSize(n int) Option {
	return func(e *Engine) { e.cacheSize = n }
}

// Engine parses and evaluates dice expressions. Parsed trees are immutable
// and cached by source text, so an Engine is safe for concurrent use as long
// as each Env is used by one evaluation at a time.
type Engine struct {
	roller    Roller
	maxDice   int
	maxDepth  int
	maxSteps  int
	cacheSize int
	cache     gcache.Cache
}

// NewEngine returns an engine with the given options applied.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		roller:    CryptoRoller{},
		maxDice:   DefaultMaxDice,
		maxDepth:  DefaultMaxDepth,
		maxSteps:  DefaultMaxSteps,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize > 0 {
		e.cache = gcache.New(e.cacheSize).
			LRU().
			LoaderFunc(func(key interface{}) (interface{}, error) {
				return parseSource(key.(string))
			}).
			Build()
	}
	return e
}

// Parse returns the tree for source, from cache when possible.
func (e *Engine) Parse(source string) (Expr, error) {
	if e.cache == nil {
		return parseSource(source)
	}
	v, err := e.cache.Get(source)
	if err != nil {
		return nil, err
	}
	return v.(Expr), nil
}

// Execute parses and evaluates source against env.
func (e *Engine) Execute(source string, env Env) (Result, error) {
	tree, err := e.Parse(source)
	if err != nil {
		return Result{}, err
	}
	return e.Eval(tree, env)
}

// Eval evaluates an already parsed tree against env.
func (e *Engine) Eval(tree Expr, env Env) (Result, error) {
	ev := &evaluator{engine: e, env: env, frozen: make(map[string]int)}
	return ev.eval(tree)
}

var defaultEngine = NewEngine()

// Execute evaluates source with the default engine.
func Execute(source string, env Env) (Result, error) {
	return defaultEngine.Execute(source, env)
}
