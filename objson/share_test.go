package objson

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Person struct {
	Name    string
	Partner *Person
}

func personRegistry() *Registry {
	r := NewRegistry()
	cl := Define[Person](r, "Person")
	Field(cl, "name", func(p *Person) *string { return &p.Name })
	Field(cl, "partner", func(p *Person) **Person { return &p.Partner })
	return r
}

func TestWrite_SharedCycle(t *testing.T) {
	alice := &Person{Name: "alice"}
	bob := &Person{Name: "bob", Partner: alice}
	alice.Partner = bob

	s := New(personRegistry())
	s.SetSharing(true)
	var buf bytes.Buffer
	require.NoError(t, s.Write(alice, &buf))

	want := `{
  "@id": "1",
  "name": "alice",
  "partner": {
    "@id": "2",
    "name": "bob",
    "partner": "@1"
  }
}
`
	assert.Equal(t, want, buf.String())
}

func TestRead_SharedCycleRestoresIdentity(t *testing.T) {
	src := `{
  "@id": "1",
  "name": "alice",
  "partner": {
    "@id": "2",
    "name": "bob",
    "partner": "@1"
  }
}`
	s := New(personRegistry())
	var alice Person
	require.NoError(t, s.Read(&alice, strings.NewReader(src)))

	require.NotNil(t, alice.Partner)
	assert.Equal(t, "bob", alice.Partner.Name)
	assert.Same(t, &alice, alice.Partner.Partner)
}

func TestRoundTrip_SharedDiamond(t *testing.T) {
	// two owners of the same object must still share it after a round trip
	type Owner struct {
		Name string
		Pet  *Person
	}
	type Pair struct {
		A *Owner
		B *Owner
	}
	r := personRegistry()
	ocl := Define[Owner](r, "Owner")
	Field(ocl, "name", func(o *Owner) *string { return &o.Name })
	Field(ocl, "pet", func(o *Owner) **Person { return &o.Pet })
	pcl := Define[Pair](r, "Pair")
	Field(pcl, "a", func(p *Pair) **Owner { return &p.A })
	Field(pcl, "b", func(p *Pair) **Owner { return &p.B })

	shared := &Person{Name: "rex"}
	in := Pair{
		A: &Owner{Name: "left", Pet: shared},
		B: &Owner{Name: "right", Pet: shared},
	}

	s := New(r)
	s.SetSharing(true)
	var buf bytes.Buffer
	require.NoError(t, s.Write(&in, &buf))
	// the shared object is written once
	assert.Equal(t, 1, strings.Count(buf.String(), `"rex"`))

	var out Pair
	require.NoError(t, s.Read(&out, &buf))
	require.NotNil(t, out.A.Pet)
	assert.Same(t, out.A.Pet, out.B.Pet)
	assert.Equal(t, "rex", out.A.Pet.Name)
}

func TestWrite_SharingOffDuplicates(t *testing.T) {
	shared := &Person{Name: "rex"}
	type Pair struct{ A, B *Person }
	r := personRegistry()
	pcl := Define[Pair](r, "Pair")
	Field(pcl, "a", func(p *Pair) **Person { return &p.A })
	Field(pcl, "b", func(p *Pair) **Person { return &p.B })

	s := New(r)
	var buf bytes.Buffer
	require.NoError(t, s.Write(&Pair{A: shared, B: shared}, &buf))
	assert.Equal(t, 2, strings.Count(buf.String(), `"rex"`))
	assert.NotContains(t, buf.String(), "@id")
}

// back-references into slices of struct values must point at the
// slice's final backing array, not at temporaries used while growing
// it.
func TestRead_BackrefIntoSliceElement(t *testing.T) {
	type Node struct{ V int }
	type Box struct {
		Nodes []Node
		First *Node
	}
	r := NewRegistry()
	ncl := Define[Node](r, "Node")
	Field(ncl, "v", func(n *Node) *int { return &n.V })
	bcl := Define[Box](r, "Box")
	Field(bcl, "nodes", func(b *Box) *[]Node { return &b.Nodes })
	Field(bcl, "first", func(b *Box) **Node { return &b.First })

	src := `{
  "nodes": [
    {"@id": "1", "v": 10},
    {"v": 20},
    {"v": 30}
  ],
  "first": "@1"
}`
	s := New(r)
	var b Box
	require.NoError(t, s.Read(&b, strings.NewReader(src)))
	require.Len(t, b.Nodes, 3)
	assert.Same(t, &b.Nodes[0], b.First)
	assert.Equal(t, 10, b.First.V)
}

func TestRead_BackrefIntoValueSlotCopies(t *testing.T) {
	type Box struct {
		P *Person
		Q Person
	}
	r := personRegistry()
	bcl := Define[Box](r, "Box")
	Field(bcl, "p", func(b *Box) **Person { return &b.P })
	Field(bcl, "q", func(b *Box) *Person { return &b.Q })

	src := `{
  "p": {"@id": "1", "name": "ann"},
  "q": "@1"
}`
	s := New(r)
	var b Box
	require.NoError(t, s.Read(&b, strings.NewReader(src)))
	assert.Equal(t, "ann", b.Q.Name)
	assert.NotSame(t, b.P, &b.Q)
}

func TestRead_ForwardReferenceIsAnError(t *testing.T) {
	src := `{
  "name": "alice",
  "partner": "@9"
}`
	s := NewWithHandler(personRegistry(), (&collector{}).handle)
	var p Person
	err := s.Read(&p, strings.NewReader(src))
	require.Error(t, err)
	assert.Equal(t, ErrInvalidID, err.(*Error).Code)
}

func TestRead_WrongKeyword(t *testing.T) {
	s := NewWithHandler(personRegistry(), (&collector{}).handle)
	var p Person
	err := s.Read(&p, strings.NewReader(`{"@owner": "x"}`))
	require.Error(t, err)
	assert.Equal(t, ErrWrongKeyword, err.(*Error).Code)
}

func TestSharing_ResetBetweenCalls(t *testing.T) {
	alice := &Person{Name: "alice"}
	s := New(personRegistry())
	s.SetSharing(true)

	var first, second bytes.Buffer
	require.NoError(t, s.Write(alice, &first))
	require.NoError(t, s.Write(alice, &second))
	// ids restart per document, so both renditions are identical
	assert.Equal(t, first.String(), second.String())
}
