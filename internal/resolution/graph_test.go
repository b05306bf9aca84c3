package resolution

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/model"
	"git.home.luguber.info/inful/docgen/internal/signature"
)

// mapResolver resolves from a mutable map and counts lookups per signature.
type mapResolver struct {
	known map[string]*model.Element
	calls map[string]int
	fail  map[string]error
}

func newMapResolver() *mapResolver {
	return &mapResolver{
		known: make(map[string]*model.Element),
		calls: make(map[string]int),
		fail:  make(map[string]error),
	}
}

func (r *mapResolver) Resolve(sig string) (*model.Element, error) {
	r.calls[sig]++
	if err, ok := r.fail[sig]; ok {
		return nil, err
	}
	if el, ok := r.known[sig]; ok {
		return el, nil
	}
	return nil, signature.ErrNotFound
}

func TestRequestIsDeferredUntilCheckpoint(t *testing.T) {
	r := newMapResolver()
	foo := &model.Element{QualifiedName: "a.Foo", Kind: model.KindClass}
	r.known["a.Foo"] = foo
	g := New(r)

	var got []*model.Element
	g.Request("a.Foo", "doc", func(el *model.Element) { got = append(got, el) })
	assert.Empty(t, got)
	assert.Equal(t, 0, r.calls["a.Foo"])

	assert.Equal(t, 1, g.Checkpoint())
	assert.Equal(t, []*model.Element{foo}, got)
}

func TestResolvedSignatureIsMemoized(t *testing.T) {
	r := newMapResolver()
	foo := &model.Element{QualifiedName: "a.Foo", Kind: model.KindClass}
	r.known["a.Foo"] = foo
	g := New(r)

	first := 0
	g.Request("a.Foo", "doc", func(*model.Element) { first++ })
	g.Checkpoint()

	second := 0
	g.Request("a.Foo", "other", func(el *model.Element) {
		second++
		assert.Same(t, foo, el)
	})
	assert.Equal(t, 1, second, "late consumer runs synchronously")

	g.Checkpoint()
	g.Drain()
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, r.calls["a.Foo"], "resolver is never asked twice")

	e, ok := g.Lookup("a.Foo")
	require.True(t, ok)
	assert.Equal(t, "doc", e.Origin)
	assert.True(t, e.Resolved())
	assert.Equal(t, 0, e.Pending())
}

func TestForwardReferenceAcrossPasses(t *testing.T) {
	r := newMapResolver()
	g := New(r)

	var got *model.Element
	g.Request("gen.Later", "doc", func(el *model.Element) { got = el })

	assert.Equal(t, 0, g.Checkpoint(), "pass 1 knows nothing about gen.Later")
	assert.Nil(t, got)
	require.Len(t, g.Unresolved(), 1)

	later := &model.Element{QualifiedName: "gen.Later", Kind: model.KindClass}
	r.known["gen.Later"] = later

	assert.Equal(t, 1, g.Checkpoint())
	assert.Same(t, later, got)
	assert.Empty(t, g.Unresolved())
}

func TestCheckpointPicksUpRequestsMadeByConsumers(t *testing.T) {
	r := newMapResolver()
	r.known["a"] = &model.Element{QualifiedName: "a", Kind: model.KindPackage}
	r.known["b"] = &model.Element{QualifiedName: "b", Kind: model.KindPackage}
	g := New(r)

	var order []string
	g.Request("a", "root", func(*model.Element) {
		order = append(order, "a")
		g.Request("b", "a", func(*model.Element) { order = append(order, "b") })
	})

	assert.Equal(t, 2, g.Checkpoint())
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestCheckpointTriesEachSignatureOnce(t *testing.T) {
	r := newMapResolver()
	g := New(r)
	g.Request("x", "doc", func(*model.Element) {})
	g.Request("y", "doc", func(*model.Element) {})
	g.Request("x", "doc2", func(*model.Element) {})

	assert.Equal(t, 0, g.Drain())
	assert.Equal(t, 1, r.calls["x"])
	assert.Equal(t, 1, r.calls["y"])
	assert.Equal(t, 2, g.Len())

	unresolved := g.Unresolved()
	require.Len(t, unresolved, 2)
	assert.Equal(t, "x", unresolved[0].Signature)
	assert.Equal(t, "doc", unresolved[0].Origin)
	assert.Equal(t, 2, unresolved[0].Pending())
}

func TestResolverErrorsLeaveEntryPending(t *testing.T) {
	r := newMapResolver()
	r.fail["bad"] = errors.New("table unavailable")
	g := New(r, WithLogger(nil))

	called := false
	g.Request("bad", "doc", func(*model.Element) { called = true })
	assert.Equal(t, 0, g.Checkpoint())
	assert.False(t, called)
	assert.Len(t, g.Unresolved(), 1)
}
