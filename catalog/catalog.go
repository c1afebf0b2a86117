// Package catalog holds the list of exercises a user can pick from
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an exercise is not in the catalog
var ErrNotFound = errors.New("exercise not found")

// Exercise is a selectable exercise.  ImageName is the reference image, and
// therefore the reference pose, it is compared against.
type Exercise struct {
	ID        uuid.UUID `json:"id" yaml:"-"`
	Name      string    `json:"name" yaml:"name"`
	ImageName string    `json:"image" yaml:"image"`
	IconName  string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Favorite  bool      `json:"favorite" yaml:"favorite"`
}

// Icon returns the icon image name, the reference image when none is set
func (e Exercise) Icon() string {
	if e.IconName != "" {
		return e.IconName
	}
	return e.ImageName
}

// Default returns the built in exercises
func Default() []Exercise {
	return []Exercise{
		{Name: "Push-ups", ImageName: "pushups"},
		{Name: "Squats", ImageName: "squats"},
		{Name: "Downwawrd Dog", ImageName: "downward-dog", IconName: "downward-dog-icon"},
		{Name: "Plank", ImageName: "plank3"},
		{Name: "Warrior 1", ImageName: "warrior-1", IconName: "warrior-1-icon"},
	}
}

// Catalog is an ordered, concurrency safe set of exercises
type Catalog struct {
	mu        sync.RWMutex
	exercises []Exercise
}

// New returns a catalog of exercises in the given order.  Exercises without
// an ID are assigned one.
func New(exercises []Exercise) (*Catalog, error) {

	c := &Catalog{exercises: make([]Exercise, 0, len(exercises))}
	images := make(map[string]bool, len(exercises))

	for _, e := range exercises {

		if e.Name == "" || e.ImageName == "" {
			return nil, fmt.Errorf("exercise %q needs a name and an image", e.Name)
		}

		if images[e.ImageName] {
			return nil, fmt.Errorf("duplicate exercise image %q", e.ImageName)
		}
		images[e.ImageName] = true

		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}

		c.exercises = append(c.exercises, e)
	}

	return c, nil
}

// All returns a copy of every exercise
func (c *Catalog) All() []Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// Favorites returns the exercises marked favorite
func (c *Catalog) Favorites() []Exercise {
	return c.filter(func(e Exercise) bool { return e.Favorite })
}

// Search returns the exercises whose name contains query, ignoring case.  An
// empty query matches everything.
func (c *Catalog) Search(query string) []Exercise {
	q := strings.ToLower(strings.TrimSpace(query))

	if q == "" {
		return c.All()
	}

	return c.filter(func(e Exercise) bool {
		return strings.Contains(strings.ToLower(e.Name), q)
	})
}

// ToggleFavorite flips the favorite flag of the exercise and returns its new
// state
func (c *Catalog) ToggleFavorite(id uuid.UUID) (Exercise, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.exercises {
		if c.exercises[i].ID == id {
			c.exercises[i].Favorite = !c.exercises[i].Favorite
			return c.exercises[i], nil
		}
	}

	return Exercise{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ByID returns the exercise with the given id
func (c *Catalog) ByID(id uuid.UUID) (Exercise, error) {
	return c.find(func(e Exercise) bool { return e.ID == id }, id.String())
}

// ByImage returns the exercise using the given reference image
func (c *Catalog) ByImage(name string) (Exercise, error) {
	return c.find(func(e Exercise) bool { return e.ImageName == name }, name)
}

// ImageNames returns the reference image of every exercise
func (c *Catalog) ImageNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.exercises))
	for i, e := range c.exercises {
		names[i] = e.ImageName
	}
	return names
}

func (c *Catalog) find(match func(Exercise) bool, key string) (Exercise, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.exercises {
		if match(e) {
			return e, nil
		}
	}

	return Exercise{}, fmt.Errorf("%w: %s", ErrNotFound, key)
}

func (c *Catalog) filter(match func(Exercise) bool) []Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Exercise
	for _, e := range c.exercises {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}
