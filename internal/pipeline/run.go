package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"typesizes/internal/cache"
	"typesizes/internal/cargo"
	"typesizes/internal/diag"
	"typesizes/internal/diagfmt"
	"typesizes/internal/observ"
	"typesizes/internal/report"
	"typesizes/internal/reportfmt"
	"typesizes/internal/trace"
)

// logger is resolved per call so the backend chosen by the CLI applies.
func logger() commonlog.Logger {
	return commonlog.GetLogger("type-sizes.pipeline")
}

// CompilerInput names the input produced by the compile stage.
const CompilerInput = "rustc"

// Input is one report to parse. Text wins over Path.
type Input struct {
	Name string
	Path string
	Text []byte
}

func (in Input) label() string {
	if in.Name != "" {
		return in.Name
	}
	return in.Path
}

// Request configures a run.
type Request struct {
	// Compile, when set, runs cargo and parses its output instead of Inputs.
	Compile *cargo.Options
	Inputs  []Input

	Include   []string
	Exclude   []string
	SortSize  bool
	MaxLength int

	MaxDiagnostics int
	Jobs           int
	Cache          *cache.DiskCache
	Progress       ProgressSink
}

// DefaultMaxDiagnostics applies when Request.MaxDiagnostics is not positive.
const DefaultMaxDiagnostics = 100

func (r *Request) maxDiagnostics() int {
	if r.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return r.MaxDiagnostics
}

// Result is what a run produced.
type Result struct {
	Types   []*report.Type
	Bag     *diag.Bag
	Command string
	Timings Timings
	Timer   *observ.Timer
}

type parsed struct {
	types  []*report.Type
	bag    *diag.Bag
	cached bool
}

// Run executes the pipeline. The returned Result is usable even when err is
// non-nil; it then holds whatever the finished stages produced.
func Run(ctx context.Context, req *Request) (Result, error) {
	result := Result{Timer: observ.NewTimer()}
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing pipeline request")
	}
	result.Bag = diag.NewBag(req.maxDiagnostics())

	filter, err := report.NewFilter(req.Include, req.Exclude)
	if err != nil {
		return result, err
	}

	ctx, root := trace.Start(ctx, trace.ScopeDriver, "pipeline")
	defer root.End("")

	inputs := req.Inputs
	if req.Compile != nil {
		out, err := compile(ctx, req, &result)
		if err != nil {
			return result, err
		}
		inputs = []Input{{Name: CompilerInput, Text: out}}
	}
	if len(inputs) == 0 {
		return result, fmt.Errorf("nothing to parse")
	}

	types, origin, err := parseAll(ctx, req, inputs, &result)
	if err != nil {
		return result, err
	}

	runStage(ctx, req.Progress, &result, StageFilter, func() string {
		before := len(types)
		types = filter.Apply(types)
		return fmt.Sprintf("%d of %d types kept", len(types), before)
	})

	if req.SortSize {
		runStage(ctx, req.Progress, &result, StageSort, func() string {
			types = report.SortBySize(types)
			return ""
		})
	}

	if req.MaxLength > 0 {
		runStage(ctx, req.Progress, &result, StageTrim, func() string {
			reporter := diag.BagReporter{Bag: result.Bag}
			for i, t := range types {
				tr := report.Trimmer{Max: req.MaxLength, Input: origin[t], Reporter: reporter}
				types[i] = tr.Trim(t)
			}
			return fmt.Sprintf("max %d", req.MaxLength)
		})
	}

	result.Bag.Sort()
	result.Types = types
	logger().Infof("%d types, %s", len(types), diagfmt.Summary(result.Bag))
	return result, nil
}

func compile(ctx context.Context, req *Request, result *Result) ([]byte, error) {
	result.Command = req.Compile.CommandLine()
	ctx, span := trace.Start(ctx, trace.ScopeStage, string(StageCompile))
	idx := result.Timer.Begin(string(StageCompile))
	emit(req.Progress, Event{Stage: StageCompile, Status: StatusWorking})
	logger().Info("compiling", "command", result.Command)

	start := time.Now()
	out, err := cargo.Compile(ctx, *req.Compile)
	elapsed := time.Since(start)
	result.Timer.End(idx, result.Command)
	result.Timings.Set(StageCompile, elapsed)
	if err != nil {
		span.End(err.Error())
		emit(req.Progress, Event{Stage: StageCompile, Status: StatusError, Err: err, Elapsed: elapsed})
		return nil, fmt.Errorf("compile failed: %w", err)
	}
	span.WithExtra("bytes", fmt.Sprint(len(out))).End("")
	emit(req.Progress, Event{Stage: StageCompile, Status: StatusDone, Elapsed: elapsed})
	return out, nil
}

// parseAll parses every input in parallel. Types come back concatenated in
// input order; origin maps each type to its input name.
func parseAll(ctx context.Context, req *Request, inputs []Input, result *Result) ([]*report.Type, map[*report.Type]string, error) {
	ctx, span := trace.Start(ctx, trace.ScopeStage, string(StageParse))
	idx := result.Timer.Begin(string(StageParse))
	start := time.Now()
	logger().Infof("parsing %d input(s)", len(inputs))

	sink := &lockedSink{sink: req.Progress}
	for _, in := range inputs {
		emit(sink, Event{Input: in.label(), Stage: StageParse, Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// Indices are unique per goroutine, no mutex needed.
	results := make([]parsed, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(inputs)))
	for i, in := range inputs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			name := in.label()
			emit(sink, Event{Input: name, Stage: StageParse, Status: StatusWorking})
			t0 := time.Now()
			p, err := parseOne(gctx, req, in)
			if err != nil {
				emit(sink, Event{Input: name, Stage: StageParse, Status: StatusError, Err: err, Elapsed: time.Since(t0)})
				return err
			}
			status := StatusDone
			if p.cached {
				status = StatusCached
			}
			emit(sink, Event{Input: name, Stage: StageParse, Status: status, Elapsed: time.Since(t0)})
			results[i] = p
			return nil
		})
	}
	err := g.Wait()

	elapsed := time.Since(start)
	result.Timer.End(idx, fmt.Sprintf("%d input(s)", len(inputs)))
	result.Timings.Set(StageParse, elapsed)
	if err != nil {
		span.End(err.Error())
		return nil, nil, err
	}

	var types []*report.Type
	origin := make(map[*report.Type]string)
	for i, p := range results {
		result.Bag.Merge(p.bag)
		for _, t := range p.types {
			origin[t] = inputs[i].label()
		}
		types = append(types, p.types...)
	}
	span.WithExtra("types", fmt.Sprint(len(types))).End("")
	emit(req.Progress, Event{Stage: StageParse, Status: StatusDone, Elapsed: elapsed})
	return types, origin, nil
}

func parseOne(ctx context.Context, req *Request, in Input) (parsed, error) {
	name := in.label()
	_, span := trace.Start(ctx, trace.ScopeInput, name)
	text := in.Text
	if text == nil {
		data, err := os.ReadFile(in.Path)
		if err != nil {
			span.End(err.Error())
			return parsed{}, fmt.Errorf("failed to read %s: %w", in.Path, err)
		}
		text = data
	}

	// The cache stores every diagnostic; the request's limit applies after.
	all := diag.NewBag(math.MaxUint16)
	key := cache.Key(text)
	if payload, ok, err := req.Cache.Get(key); err != nil {
		logger().Warningf("cache read for %s: %s", name, err)
	} else if ok {
		types, convErr := reportfmt.ToTypes(payload.Types)
		if convErr == nil {
			payload.Replay(name, diag.BagReporter{Bag: all})
			span.WithExtra("cache", "hit").End("")
			return parsed{types: types, bag: all.Limit(req.maxDiagnostics()), cached: true}, nil
		}
		logger().Warningf("cache entry for %s unusable: %s", name, convErr)
	}

	p := &report.Parser{Input: name, Reporter: diag.BagReporter{Bag: all}}
	types := p.ParseText(string(text))

	if req.Cache != nil {
		payload := &cache.Payload{Types: reportfmt.FromTypes(types), Diagnostics: cache.FromBag(all)}
		if err := req.Cache.Put(key, payload); err != nil {
			logger().Warningf("cache write for %s: %s", name, err)
		}
	}
	bag := all.Limit(req.maxDiagnostics())
	for _, t := range types {
		span.Point(trace.ScopeType, t.Name, fmt.Sprintf("%d bytes", t.Size))
	}
	span.WithExtra("types", fmt.Sprint(len(types))).End("")
	return parsed{types: types, bag: bag}, nil
}

func runStage(ctx context.Context, sink ProgressSink, result *Result, stage Stage, fn func() string) {
	_, span := trace.Start(ctx, trace.ScopeStage, string(stage))
	idx := result.Timer.Begin(string(stage))
	emit(sink, Event{Stage: stage, Status: StatusWorking})
	start := time.Now()
	note := fn()
	elapsed := time.Since(start)
	result.Timer.End(idx, note)
	result.Timings.Set(stage, elapsed)
	span.End(note)
	emit(sink, Event{Stage: stage, Status: StatusDone, Elapsed: elapsed})
}

func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}
