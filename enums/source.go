package enums

type Source string

const (
	SourceInvalid     Source = ""
	SourceReddit      Source = "reddit"
	SourceArcticShift Source = "arcticshift"
)

func ParseSource(s string) Source {
	switch Source(s) {
	case SourceReddit, SourceArcticShift:
		return Source(s)
	}
	return SourceInvalid
}
