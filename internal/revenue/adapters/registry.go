package adapters

import (
	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
)

type Registry struct {
	adapters map[billingdomain.Processor]revenuedomain.Adapter
}

func NewRegistry(adapters ...revenuedomain.Adapter) *Registry {
	registry := &Registry{adapters: map[billingdomain.Processor]revenuedomain.Adapter{}}
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		processor := adapter.Processor()
		if processor == billingdomain.ProcessorUnknown {
			continue
		}
		registry.adapters[processor] = adapter
	}
	return registry
}

func (r *Registry) Supports(processor billingdomain.Processor) bool {
	_, err := r.Resolve(processor)
	return err == nil
}

// Resolve returns the adapter for a known processor. Every other value,
// including ProcessorUnknown, yields ErrUnknownProcessor.
func (r *Registry) Resolve(processor billingdomain.Processor) (revenuedomain.Adapter, error) {
	if r == nil {
		return nil, revenuedomain.ErrUnknownProcessor
	}
	switch processor {
	case billingdomain.ProcessorStripe,
		billingdomain.ProcessorBraintree,
		billingdomain.ProcessorPaddleBilling,
		billingdomain.ProcessorPaddleClassic:
		adapter, ok := r.adapters[processor]
		if !ok {
			return nil, revenuedomain.ErrUnknownProcessor
		}
		return adapter, nil
	default:
		return nil, revenuedomain.ErrUnknownProcessor
	}
}
