package params

import (
	"maps"
	"reflect"
	"sync"
)

// Object is a view model that accepts default values it does not already
// expose. FillObject mutates implementations in place, so they are normally
// pointers.
type Object interface {
	SetProperty(name string, value any)
}

// PropertyChecker lets a view model report dynamic properties that are not
// visible as struct fields or methods.
type PropertyChecker interface {
	HasProperty(name string) bool
}

// PropertyLister is implemented by view models that hold dynamic properties
// the template engine should see alongside the object's fields and methods.
type PropertyLister interface {
	Properties() map[string]any
}

// HasMember reports whether obj exposes name as a dynamic property, an
// exported struct field or a method. Names match the way the template engine
// looks them up: exactly, case included.
func HasMember(obj any, name string) bool {
	if obj == nil || name == "" {
		return false
	}
	if checker, ok := obj.(PropertyChecker); ok && checker.HasProperty(name) {
		return true
	}

	rv := reflect.ValueOf(obj)
	if rv.MethodByName(name).IsValid() {
		return true
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return false
	}
	field, ok := rv.Type().FieldByName(name)
	return ok && field.IsExported()
}

// Props is an embeddable property bag implementing Object, PropertyChecker
// and PropertyLister. Embed it in a view model struct and pass a pointer to
// the renderer to receive default parameters.
//
//	type page struct {
//		params.Props
//		Title string
//	}
type Props struct {
	mu     sync.RWMutex
	values map[string]any
}

// SetProperty stores value under name.
func (p *Props) SetProperty(name string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.values == nil {
		p.values = make(map[string]any)
	}
	p.values[name] = value
}

// HasProperty reports whether name holds a non-nil value.
func (p *Props) HasProperty(name string) bool {
	value, ok := p.Property(name)
	return ok && value != nil
}

// Property returns the value stored under name.
func (p *Props) Property(name string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	value, ok := p.values[name]
	return value, ok
}

// Properties returns a copy of every stored property.
func (p *Props) Properties() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]any, len(p.values))
	maps.Copy(out, p.values)
	return out
}
