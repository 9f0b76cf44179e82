package course_archiver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/alanbriolat/course-archiver/generic"
)

var (
	ErrDuplicateCourse      = fmt.Errorf("%w: duplicate course id", ErrPrecondition)
	ErrDuplicateMechanism   = fmt.Errorf("%w: transfer mechanism claimed by more than one strategy", ErrPrecondition)
	ErrInvalidStrategy      = fmt.Errorf("%w: invalid strategy", ErrPrecondition)
	ErrUnknownCourse        = fmt.Errorf("%w: unknown course", ErrPrecondition)
	ErrUnsupportedMechanism = fmt.Errorf("%w: transfer mechanism not supported by course", ErrPrecondition)
	ErrUnsupportedVideoType = fmt.Errorf("%w: video type not supported by course", ErrPrecondition)
)

// Transfer mechanism identifiers.
const (
	MechanismYtDlp   = "yt-dlp"
	MechanismYouTube = "youtube"
	Mechanism300k    = "300k"
	MechanismDirect  = "direct"
)

// ResolutionKind tags the closed set of ways a course's videos can be resolved.
type ResolutionKind int

const (
	GalleryResolution ResolutionKind = iota + 1
	ResourceIndexResolution
	FilesystemScanResolution
	SyntheticTemplateResolution
)

func (k ResolutionKind) String() string {
	switch k {
	case GalleryResolution:
		return "gallery"
	case ResourceIndexResolution:
		return "resource-index"
	case FilesystemScanResolution:
		return "filesystem-scan"
	case SyntheticTemplateResolution:
		return "synthetic-template"
	default:
		return fmt.Sprintf("ResolutionKind(%d)", int(k))
	}
}

// A Resolution turns a static site snapshot into a VideoTypeCollection.
type Resolution interface {
	Kind() ResolutionKind
	// VideoTypes lists the video type labels this resolution can produce.
	VideoTypes() []string
	// Resolve builds the collection for the requested types, which must be a subset of VideoTypes.
	Resolve(ctx context.Context, root string, types []string) (VideoTypeCollection, error)
}

// A Strategy binds a Resolution to the transfer mechanisms whose URLs it produces.
type Strategy struct {
	Name       string
	Mechanisms generic.Set[string]
	Resolution Resolution
}

func (s *Strategy) validate() error {
	if s.Name == "" || s.Resolution == nil || s.Mechanisms == nil || s.Mechanisms.Count() == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, s.Name)
	}
	return nil
}

// CheckTypes returns the requested types, or all types if none were requested, failing if any is unsupported.
func (s *Strategy) CheckTypes(types []string) ([]string, error) {
	supported := s.Resolution.VideoTypes()
	if len(types) == 0 {
		return supported, nil
	}
	known := generic.NewSet(supported...)
	var result error
	for _, t := range types {
		if !known.Contains(t) {
			result = multierror.Append(result, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedVideoType, t, strings.Join(supported, ", ")))
		}
	}
	if result != nil {
		return nil, result
	}
	return types, nil
}

// A Course is a set of strategies, at most one per transfer mechanism.
type Course struct {
	ID         string
	Title      string
	strategies []*Strategy
	mechanisms map[string]*Strategy
}

// NewCourse validates the strategies, rejecting any transfer mechanism claimed by more than one of them.
func NewCourse(id string, title string, strategies ...Strategy) (*Course, error) {
	c := &Course{
		ID:         id,
		Title:      title,
		mechanisms: make(map[string]*Strategy),
	}
	var result error
	if id == "" {
		result = multierror.Append(result, fmt.Errorf("%w: empty course id", ErrPrecondition))
	}
	if len(strategies) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: course %q has no strategies", ErrInvalidStrategy, id))
	}
	for i := range strategies {
		s := &strategies[i]
		if err := s.validate(); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		c.strategies = append(c.strategies, s)
		for _, m := range s.Mechanisms.ToSlice() {
			if other, ok := c.mechanisms[m]; ok {
				result = multierror.Append(result, fmt.Errorf("%w: %q by %q and %q in %s", ErrDuplicateMechanism, m, other.Name, s.Name, id))
				continue
			}
			c.mechanisms[m] = s
		}
	}
	if result != nil {
		return nil, result
	}
	return c, nil
}

// Mechanisms returns the supported transfer mechanisms in sorted order.
func (c *Course) Mechanisms() []string {
	names := make([]string, 0, len(c.mechanisms))
	for m := range c.mechanisms {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

// StrategyFor finds the unique strategy supporting the transfer mechanism.
func (c *Course) StrategyFor(mechanism string) (*Strategy, error) {
	if s, ok := c.mechanisms[mechanism]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q for %s (supported: %s)", ErrUnsupportedMechanism, mechanism, c.ID, strings.Join(c.Mechanisms(), ", "))
}

// A Catalog is the registry of known courses, built once at startup.
type Catalog struct {
	courses map[string]*Course
}

func NewCatalog(courses ...*Course) (*Catalog, error) {
	c := &Catalog{}
	var result error
	for _, course := range courses {
		result = multierror.Append(result, c.Add(course)).ErrorOrNil()
	}
	if result != nil {
		return nil, result
	}
	return c, nil
}

// Add registers a Course, whose ID must be unique within the Catalog.
func (c *Catalog) Add(course *Course) error {
	if c.courses == nil {
		c.courses = make(map[string]*Course)
	}
	if course == nil {
		return fmt.Errorf("%w: nil course", ErrPrecondition)
	}
	if _, ok := c.courses[course.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCourse, course.ID)
	}
	c.courses[course.ID] = course
	return nil
}

func (c *Catalog) Get(id string) (*Course, error) {
	if course, ok := c.courses[id]; ok {
		return course, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownCourse, id, strings.Join(c.List(), ", "))
}

// List returns the registered course IDs in sorted order.
func (c *Catalog) List() []string {
	ids := make([]string, 0, len(c.courses))
	for id := range c.courses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Select looks up the course and the strategy for the transfer mechanism, and checks the requested video types.
// Nothing touches the network or filesystem, so a bad combination fails before any work starts.
func (c *Catalog) Select(id string, mechanism string, types []string) (*Course, *Strategy, []string, error) {
	course, err := c.Get(id)
	if err != nil {
		return nil, nil, nil, err
	}
	strategy, err := course.StrategyFor(mechanism)
	if err != nil {
		return nil, nil, nil, err
	}
	types, err = strategy.CheckTypes(types)
	if err != nil {
		return nil, nil, nil, err
	}
	return course, strategy, types, nil
}
