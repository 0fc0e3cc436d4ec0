package service

import "context"

// UserDirectory resolves acting user ids. Every mutation validates its actor
// against it.
type UserDirectory interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// Translator converts texts between languages. It is consulted by view
// materialization when the requested language is not the default.
type Translator interface {
	Translate(ctx context.Context, sourceLang, targetLang string, texts []string) ([]string, error)
}

// LayoutProvider supplies the default page layout and named body templates.
type LayoutProvider interface {
	GetDefaultLayout(ctx context.Context) (string, error)
	GetTemplate(ctx context.Context, ref string) (string, error)
}

// StaticUserDirectory is a fixed set of known user ids.
type StaticUserDirectory map[string]bool

func NewStaticUserDirectory(ids ...string) StaticUserDirectory {
	dir := make(StaticUserDirectory, len(ids))
	for _, id := range ids {
		dir[id] = true
	}
	return dir
}

func (d StaticUserDirectory) UserExists(ctx context.Context, id string) (bool, error) {
	return d[id], nil
}

// OpenUserDirectory accepts any non-empty user id. Used by the CLI where the
// real directory lives elsewhere.
type OpenUserDirectory struct{}

func (OpenUserDirectory) UserExists(ctx context.Context, id string) (bool, error) {
	return id != "", nil
}

// NopTranslator returns texts unchanged.
type NopTranslator struct{}

func (NopTranslator) Translate(ctx context.Context, sourceLang, targetLang string, texts []string) ([]string, error) {
	return texts, nil
}

const defaultLayout = "<html><head></head><body>{{content}}</body></html>"

// StaticLayoutProvider serves a fixed layout and an in-memory template set.
type StaticLayoutProvider struct {
	Layout    string
	Templates map[string]string
}

func (p StaticLayoutProvider) GetDefaultLayout(ctx context.Context) (string, error) {
	if p.Layout == "" {
		return defaultLayout, nil
	}
	return p.Layout, nil
}

func (p StaticLayoutProvider) GetTemplate(ctx context.Context, ref string) (string, error) {
	if body, ok := p.Templates[ref]; ok {
		return body, nil
	}
	return "", ErrTemplateNotFound
}
