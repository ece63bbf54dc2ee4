// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

/*
Package supervisor provides process supervision for Wisata using suture v4.

The tree keeps training and request serving in separate layers so that a
failing trainer never takes the API down with it:

	RootSupervisor ("wisata")
	├── TrainingSupervisor ("training-layer")
	│   └── TrainerService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each supervisor restarts its children with exponential backoff once
FailureThreshold failures accumulate within the FailureDecay window.
Supervisor events are logged through sutureslog.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{})
	if err != nil {
	    return err
	}
	tree.AddTrainingService(services.NewTrainerService(engine, bus, store, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

On shutdown the root context is cancelled and every service gets
ShutdownTimeout to return. Services that overrun it are reported by
UnstoppedServiceReport.
*/
package supervisor
