package nic

import (
	"github.com/pkg/errors"

	"github.com/frozenpine/nic4go/e1000"
	"github.com/frozenpine/nic4go/pci"
)

// AttachE1000 builds the attach constructor for the supported
// controller family: enable the function, bring the driver up and
// publish the interface under the given name. Init failures bubble
// up to the enumerator, which keeps walking the bus.
func AttachE1000(name string, cfg e1000.Config, registry *Registry) pci.AttachFunc {
	return func(pcif *pci.Function) error {
		pcif.EnableDevice()

		drv, err := e1000.Init(pcif, cfg)
		if err != nil {
			return errors.Wrap(err, "e1000 init failed")
		}

		registry.Register(&Handle{
			Name:     name,
			MAC:      drv.MAC(),
			Sender:   drv,
			Receiver: drv,
		})

		return nil
	}
}
