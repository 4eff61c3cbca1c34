// Package models defines client-side data models used by the Obex CLI.
package models

import (
	"errors"
	"fmt"
)

// Path is the user's chosen personal-growth track. It drives display
// metadata and the analysis prompt selection.
type Path string

const (
	PathConfidence Path = "confidence"
	PathClarity    Path = "clarity"
	PathDiscipline Path = "discipline"
)

var ErrUnknownPath = errors.New("unknown path")

// PathInfo carries display metadata for a path.
type PathInfo struct {
	DisplayName string
	Tagline     string
}

var pathInfo = map[Path]PathInfo{
	PathConfidence: {DisplayName: "Confidence", Tagline: "own your voice"},
	PathClarity:    {DisplayName: "Clarity", Tagline: "see what matters"},
	PathDiscipline: {DisplayName: "Discipline", Tagline: "show up daily"},
}

// AllPaths lists the closed set of paths in display order.
func AllPaths() []Path {
	return []Path{PathConfidence, PathClarity, PathDiscipline}
}

// ParsePath validates s against the closed path enumeration.
func ParsePath(s string) (Path, error) {
	p := Path(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPath, s)
	}
	return p, nil
}

func (p Path) Valid() bool {
	_, ok := pathInfo[p]
	return ok
}

// Info returns display metadata for the path. Unknown paths yield a
// zero PathInfo.
func (p Path) Info() PathInfo {
	return pathInfo[p]
}

func (p Path) String() string { return string(p) }
