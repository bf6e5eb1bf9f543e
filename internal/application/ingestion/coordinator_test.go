package ingestion

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papergraph-backend/internal/domain/graph"
	"papergraph-backend/internal/domain/shared"
	"papergraph-backend/internal/service/llm"
)

// gatedExtractor returns a payload named by the first section title once
// that title's gate is released.
type gatedExtractor struct {
	mu       sync.Mutex
	gates    map[string]chan struct{}
	payloads map[string]string
	errs     map[string]error
}

func newGatedExtractor() *gatedExtractor {
	return &gatedExtractor{
		gates:    make(map[string]chan struct{}),
		payloads: make(map[string]string),
		errs:     make(map[string]error),
	}
}

func (g *gatedExtractor) add(name, payload string, gated bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payloads[name] = payload
	if gated {
		g.gates[name] = make(chan struct{})
	}
}

func (g *gatedExtractor) release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[name])
}

func (g *gatedExtractor) ExtractKnowledgeGraph(ctx context.Context, sections []llm.Section) ([]byte, error) {
	name := sections[0].Title
	g.mu.Lock()
	gate := g.gates[name]
	payload := g.payloads[name]
	err := g.errs[name]
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func single(title string) string {
	return fmt.Sprintf(`{"nodes":[{"id":%q,"type":"concept","importance":3}],"edges":[]}`, title)
}

func sections(name string) []llm.Section {
	return []llm.Section{{Title: name, Content: "..."}}
}

func titles(s *graph.Store) []string {
	var out []string
	for _, n := range s.Nodes() {
		out = append(out, n.Title)
	}
	return out
}

func TestCoordinator_SequentialIngestionsReplace(t *testing.T) {
	live := graph.NewStore()
	ex := newGatedExtractor()
	ex.add("first", single("one"), false)
	ex.add("second", single("two"), false)
	c := NewCoordinator(NewAdapter(live, nil), ex, nil)

	first := <-c.Trigger(context.Background(), sections("first"))
	require.True(t, first.Applied())
	assert.Equal(t, []string{"one"}, titles(live))

	second := <-c.Trigger(context.Background(), sections("second"))
	require.True(t, second.Applied())
	assert.Equal(t, []string{"two"}, titles(live))
	assert.Equal(t, second.Ticket, c.LastInstalled())
}

func TestCoordinator_StaleRunDiscarded(t *testing.T) {
	live := graph.NewStore()
	ex := newGatedExtractor()
	ex.add("slow", single("old"), true)
	ex.add("fast", single("new"), false)
	c := NewCoordinator(NewAdapter(live, nil), ex, nil)

	slow := c.Trigger(context.Background(), sections("slow"))
	fast := <-c.Trigger(context.Background(), sections("fast"))
	require.True(t, fast.Applied())
	assert.Equal(t, []string{"new"}, titles(live))

	ex.release("slow")
	outcome := <-slow
	assert.True(t, outcome.Stale)
	assert.NoError(t, outcome.Err)
	assert.Less(t, outcome.Ticket, fast.Ticket)
	assert.Equal(t, []string{"new"}, titles(live), "last-triggered run wins")
}

func TestCoordinator_OlderRunInstalledUntilNewerArrives(t *testing.T) {
	live := graph.NewStore()
	ex := newGatedExtractor()
	ex.add("first", single("one"), false)
	ex.add("second", single("two"), true)
	c := NewCoordinator(NewAdapter(live, nil), ex, nil)

	first := c.Trigger(context.Background(), sections("first"))
	second := c.Trigger(context.Background(), sections("second"))

	require.True(t, (<-first).Applied())
	assert.Equal(t, []string{"one"}, titles(live))

	ex.release("second")
	require.True(t, (<-second).Applied())
	assert.Equal(t, []string{"two"}, titles(live))
}

func TestCoordinator_ReadersSeePreviousGraphDuringExtraction(t *testing.T) {
	live := graph.NewStore()
	ex := newGatedExtractor()
	ex.add("base", single("base"), false)
	ex.add("next", single("next"), true)
	c := NewCoordinator(NewAdapter(live, nil), ex, nil)
	require.True(t, (<-c.Trigger(context.Background(), sections("base"))).Applied())

	pending := c.Trigger(context.Background(), sections("next"))
	assert.Equal(t, []string{"base"}, titles(live))

	ex.release("next")
	c.Wait()
	assert.True(t, (<-pending).Applied())
	assert.Equal(t, []string{"next"}, titles(live))
}

func TestCoordinator_FailuresKeepGraph(t *testing.T) {
	live := graph.NewStore()
	ex := newGatedExtractor()
	ex.add("good", single("good"), false)
	ex.add("garbage", `not json at all`, false)
	ex.add("down", "", false)
	ex.errs["down"] = fmt.Errorf("provider down")
	c := NewCoordinator(NewAdapter(live, nil), ex, nil)
	require.True(t, (<-c.Trigger(context.Background(), sections("good"))).Applied())

	bad := <-c.Trigger(context.Background(), sections("garbage"))
	assert.ErrorIs(t, bad.Err, shared.ErrMalformedIngestionInput)

	down := <-c.Trigger(context.Background(), sections("down"))
	assert.EqualError(t, down.Err, "provider down")

	assert.Equal(t, []string{"good"}, titles(live))
}

func TestCoordinator_Apply(t *testing.T) {
	live := graph.NewStore()
	c := NewCoordinator(NewAdapter(live, nil), newGatedExtractor(), nil)

	out := c.Apply(context.Background(), []byte(scenarioPayload))
	require.True(t, out.Applied())
	assert.Equal(t, 2, out.Report.NodesAdded)
	assert.Equal(t, out.Ticket, c.LastInstalled())
}

func TestCoordinator_ConcurrentTriggersEndWithNewest(t *testing.T) {
	live := graph.NewStore()
	ex := newGatedExtractor()
	const runs = 10
	for i := 0; i < runs; i++ {
		ex.add(fmt.Sprint(i), single(fmt.Sprint(i)), false)
	}
	c := NewCoordinator(NewAdapter(live, nil), ex, nil)

	var outs []<-chan Outcome
	for i := 0; i < runs; i++ {
		outs = append(outs, c.Trigger(context.Background(), sections(fmt.Sprint(i))))
	}
	c.Wait()

	var newest uint64
	for _, ch := range outs {
		o := <-ch
		require.NoError(t, o.Err)
		if o.Ticket > newest {
			newest = o.Ticket
		}
	}
	assert.Equal(t, newest, c.LastInstalled())
	assert.Equal(t, []string{"9"}, titles(live))
}
