package id

// Gen generates the next number id.
type Gen func() uint64

type Generator interface {
	Number() uint64
	Str() string
}

var (
	_ Generator = (*idDelegator)(nil)
)

type idDelegator struct {
	number Gen
	str    func() string
}

func (id *idDelegator) Number() uint64 { return id.number() }
func (id *idDelegator) Str() string    { return id.str() }
