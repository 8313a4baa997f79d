// Package providers assembles the configured payment backends behind a
// method-keyed registry.
package providers

import (
	"github.com/payflowhq/payflow/internal/payment/domain"
)

// Registry resolves a payment method to its provider. The set is fixed at
// construction, so lookups need no locking.
type Registry struct {
	providers map[domain.Method]domain.Provider
	order     []domain.Method
}

func NewRegistry(list ...domain.Provider) *Registry {
	r := &Registry{providers: make(map[domain.Method]domain.Provider, len(list))}
	for _, p := range list {
		name := p.Name()
		if _, ok := r.providers[name]; ok {
			continue
		}
		r.providers[name] = p
		r.order = append(r.order, name)
	}
	return r
}

func (r *Registry) Get(method domain.Method) (domain.Provider, error) {
	p, ok := r.providers[method]
	if !ok {
		return nil, domain.ErrUnsupportedProvider
	}
	return p, nil
}

// Available returns the registered methods in registration order.
func (r *Registry) Available() []domain.Method {
	out := make([]domain.Method, len(r.order))
	copy(out, r.order)
	return out
}
