package testfixtures

import (
	"time"

	"github.com/example/roombook/internal/kvstore"
	"github.com/example/roombook/internal/token"
)

// ServiceFactory bundles the deterministic inputs the application services
// take: a controllable clock, sequential captcha codes, and builders for the
// clock-driven collaborators.
type ServiceFactory struct {
	Clock *Clock
	Codes *CodeGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock: NewClock(time.Time{}),
		Codes: NewCodeGenerator(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.Codes == nil {
		factory.Codes = NewCodeGenerator()
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithCodes overrides the captcha code generator used by the factory.
func WithCodes(codes *CodeGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Codes = codes
	}
}

// NewKVStore builds an in-process ephemeral store driven by the factory
// clock, so TTL expiry can be exercised deterministically.
func (f *ServiceFactory) NewKVStore() *kvstore.MemoryStore {
	return kvstore.NewMemoryStore(f.Clock.NowFunc())
}

// NewTokenManager builds a token manager on the factory clock, so token
// expiry can be exercised deterministically.
func (f *ServiceFactory) NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) (*token.Manager, error) {
	return token.NewManager([]byte(secret), accessTTL, refreshTTL, f.Clock.NowFunc())
}
