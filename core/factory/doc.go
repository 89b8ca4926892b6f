// Package factory provides a small generic registry used to instantiate
// modules from configuration. Modules are defined by a type string and a map
// of raw settings. Factories decode the settings into typed structs and
// return the concrete implementation.
//
// The engine uses it to pick a scheduling algorithm at request time:
//
//	reg := factory.NewRegistry[Solver]()
//	reg.Register("greedy", func(conf map[string]any) (Solver, error) {
//	    var c greedyConf
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newGreedy(c), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "greedy"})
package factory
