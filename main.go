package main

import (
	"context"
	"log"

	"meeting-recorder/internal/bootstrap"
	"meeting-recorder/internal/capture"
	"meeting-recorder/internal/domain"
	"meeting-recorder/internal/record"
)

func main() {
	// The synthetic collaborator and discard sink stand in until a browser
	// automation bridge and an upload target are attached.
	sink := record.SinkFunc(func(ctx context.Context, chunk domain.Chunk) error {
		return nil
	})

	app, err := bootstrap.New(capture.NewStubCollaborator(), sink)
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
