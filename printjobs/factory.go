package printjobs

import "fmt"

// StoreFactory is a callback that constructs a Store from Conf.
// It is registered with RegisterFactory and called by printjobs.New.
type StoreFactory func(conf *Conf) (Store, error)

var registry = map[string]StoreFactory{}

func RegisterFactory(storeType string, factory StoreFactory) {
	registry[storeType] = factory
}

func New(storeType string, conf *Conf) (Store, error) {
	factory, ok := registry[storeType]
	if !ok {
		return nil, fmt.Errorf("unsupported job store type: %s", storeType)
	}
	return factory(conf)
}
