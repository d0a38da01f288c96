package knowledge

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-ai/engine"
)

// Metadata carries descriptive attributes of a Context.
type Metadata struct {
	// AgentID identifies the agent that owns or produced this context.
	AgentID string `json:"agent_id,omitempty" yaml:"agent_id,omitempty"`

	// Tags are arbitrary labels for categorization and filtering.
	// The set contains no duplicates.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Dependencies lists identifiers of contexts this one depends on.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// RetentionPolicy names the retention policy applied by the host layer.
	RetentionPolicy string `json:"retention_policy,omitempty" yaml:"retention_policy,omitempty"`
}

// Relationships links a Context into the knowledge hierarchy.
type Relationships struct {
	// Parent is the identifier of the parent context, empty for roots.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Children are identifiers of direct child contexts. No duplicates.
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`

	// References are identifiers of non-hierarchical related contexts.
	// No duplicates.
	References []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// Context is a hierarchical knowledge unit with a recomputable importance
// score. Contexts are single-writer: callers sharing one across goroutines
// must serialize access externally.
type Context struct {
	// ID is the unique context identifier. Auto-generated by NewContext.
	ID string `json:"id" yaml:"id"`

	// Type is the kind of knowledge unit (project, epic, task, session, agent).
	Type ContextType `json:"type" yaml:"type"`

	// Hierarchy is the ordered path of segments from root to this unit.
	Hierarchy []string `json:"hierarchy,omitempty" yaml:"hierarchy,omitempty"`

	// Importance is the current importance score, always in [0, 100].
	Importance int `json:"importance" yaml:"importance"`

	// Content is opaque text. Callers may store compressed payloads here.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Metadata carries descriptive attributes.
	Metadata Metadata `json:"metadata" yaml:"metadata"`

	// Relationships links this context to its parent, children, and references.
	Relationships Relationships `json:"relationships" yaml:"relationships"`

	// Created is the timestamp when the context was created.
	Created time.Time `json:"created" yaml:"created"`

	// Updated is the timestamp of the last structural mutation or importance
	// update.
	Updated time.Time `json:"updated" yaml:"updated"`
}

// NewContext creates a Context of the given type with a generated ID,
// current timestamps, and zero importance.
// Returns a validation error if the type is unknown.
func NewContext(t ContextType) (*Context, error) {
	if !t.IsValid() {
		return nil, engine.NewValidationError("knowledge.NewContext", engine.ErrInvalidType).
			WithContext(map[string]any{"type": string(t)})
	}

	now := time.Now()
	return &Context{
		ID:      uuid.New().String(),
		Type:    t,
		Created: now,
		Updated: now,
	}, nil
}

// Validate checks the Context invariants.
// Returns a validation error for an unknown type, an out-of-range
// importance, self-parenting, or duplicate children/references.
func (c *Context) Validate() error {
	const op = "Context.Validate"

	if !c.Type.IsValid() {
		return engine.NewValidationError(op, engine.ErrInvalidType).
			WithContext(map[string]any{"type": string(c.Type)})
	}
	if c.Importance < 0 || c.Importance > 100 {
		return engine.NewValidationError(op, engine.ErrOutOfRange).
			WithContext(map[string]any{"field": "importance", "value": c.Importance})
	}
	if c.Relationships.Parent != "" {
		if c.Relationships.Parent == c.ID {
			return engine.NewValidationError(op, engine.ErrInvalidRelationship).
				WithContext(map[string]any{"field": "relationships.parent", "value": "self"})
		}
		if contains(c.Relationships.Children, c.Relationships.Parent) {
			return engine.NewValidationError(op, engine.ErrInvalidRelationship).
				WithContext(map[string]any{"field": "relationships.parent", "value": "in children"})
		}
	}
	if hasDuplicates(c.Relationships.Children) {
		return engine.NewValidationError(op, engine.ErrInvalidRelationship).
			WithContext(map[string]any{"field": "relationships.children", "value": "duplicates"})
	}
	if hasDuplicates(c.Relationships.References) {
		return engine.NewValidationError(op, engine.ErrInvalidRelationship).
			WithContext(map[string]any{"field": "relationships.references", "value": "duplicates"})
	}
	return nil
}

// SetParent sets the parent identifier and stamps Updated.
// Setting the context's own ID is a silent no-op.
func (c *Context) SetParent(id string) {
	if id == c.ID {
		return
	}
	c.Relationships.Parent = id
	c.touch()
}

// AddChild adds a child identifier and stamps Updated.
// Duplicates and the context's own ID are silent no-ops.
func (c *Context) AddChild(id string) {
	if id == "" || id == c.ID || contains(c.Relationships.Children, id) {
		return
	}
	c.Relationships.Children = append(c.Relationships.Children, id)
	c.touch()
}

// RemoveChild removes a child identifier and stamps Updated.
// Removing an absent child is a silent no-op.
func (c *Context) RemoveChild(id string) {
	if removed := remove(&c.Relationships.Children, id); removed {
		c.touch()
	}
}

// AddReference adds a reference identifier and stamps Updated.
// Duplicates are silent no-ops.
func (c *Context) AddReference(id string) {
	if id == "" || contains(c.Relationships.References, id) {
		return
	}
	c.Relationships.References = append(c.Relationships.References, id)
	c.touch()
}

// RemoveReference removes a reference identifier and stamps Updated.
// Removing an absent reference is a silent no-op.
func (c *Context) RemoveReference(id string) {
	if removed := remove(&c.Relationships.References, id); removed {
		c.touch()
	}
}

// AddTag adds a tag and stamps Updated. Duplicates are silent no-ops.
func (c *Context) AddTag(tag string) {
	if tag == "" || contains(c.Metadata.Tags, tag) {
		return
	}
	c.Metadata.Tags = append(c.Metadata.Tags, tag)
	c.touch()
}

// RemoveTag removes a tag and stamps Updated.
// Removing an absent tag is a silent no-op.
func (c *Context) RemoveTag(tag string) {
	if removed := remove(&c.Metadata.Tags, tag); removed {
		c.touch()
	}
}

// HasTag returns true if the context carries the given tag.
func (c *Context) HasTag(tag string) bool {
	return contains(c.Metadata.Tags, tag)
}

// SetContent replaces the content and stamps Updated.
func (c *Context) SetContent(content string) {
	c.Content = content
	c.touch()
}

// Depth returns the number of hierarchy segments from root to this unit.
func (c *Context) Depth() int {
	return len(c.Hierarchy)
}

// IsRoot returns true if the context has no parent.
func (c *Context) IsRoot() bool {
	return c.Relationships.Parent == ""
}

// AgeInDays returns the fractional number of days since the last update.
func (c *Context) AgeInDays() float64 {
	return time.Since(c.Updated).Hours() / 24
}

// Override mutates a freshly cloned Context before it is returned.
// Overrides are applied after all fields are copied and the identity
// refreshed.
type Override func(*Context)

// Clone produces a new Context with a freshly generated identifier and
// refreshed timestamps, otherwise copying all fields, then applying the
// given overrides.
func (c *Context) Clone(overrides ...Override) *Context {
	now := time.Now()
	clone := &Context{
		ID:         uuid.New().String(),
		Type:       c.Type,
		Hierarchy:  copyStrings(c.Hierarchy),
		Importance: c.Importance,
		Content:    c.Content,
		Metadata: Metadata{
			AgentID:         c.Metadata.AgentID,
			Tags:            copyStrings(c.Metadata.Tags),
			Dependencies:    copyStrings(c.Metadata.Dependencies),
			RetentionPolicy: c.Metadata.RetentionPolicy,
		},
		Relationships: Relationships{
			Parent:     c.Relationships.Parent,
			Children:   copyStrings(c.Relationships.Children),
			References: copyStrings(c.Relationships.References),
		},
		Created: now,
		Updated: now,
	}

	for _, override := range overrides {
		override(clone)
	}
	return clone
}

// ToJSON serializes the Context to its canonical JSON form.
func (c *Context) ToJSON() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, engine.NewInternalError("Context.ToJSON", err)
	}
	return data, nil
}

// FromJSON reconstructs a Context from its canonical JSON form.
// A parse failure yields a deserialization error; a payload that parses but
// violates the Context invariants yields a validation error. Neither failure
// mode affects previously loaded entities.
func FromJSON(data []byte) (*Context, error) {
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, engine.NewDeserializationError("knowledge.FromJSON", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Context) touch() {
	c.Updated = time.Now()
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func remove(list *[]string, v string) bool {
	for i, s := range *list {
		if s == v {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

func hasDuplicates(list []string) bool {
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			return true
		}
		seen[s] = struct{}{}
	}
	return false
}

func copyStrings(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
