package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semshape/config"
	shapevalidator "github.com/c360studio/semshape/processor/shape-validator"
	"github.com/c360studio/semshape/shape"
	"github.com/c360studio/semshape/storage"
)

// shapesCmd groups the shape definition management commands. They talk
// directly to the KV bucket, so the service picks up changes on its next
// start.
func shapesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "Manage stored shape definitions",
	}
	cmd.AddCommand(shapesPutCmd(configPath))
	cmd.AddCommand(shapesGetCmd(configPath))
	cmd.AddCommand(shapesListCmd(configPath))
	cmd.AddCommand(shapesDeleteCmd(configPath))
	return cmd
}

func shapesPutCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Store shape definitions from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			defs, err := parseDefinitions(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			ctx := cmd.Context()
			store, conn, err := openShapeStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			for _, def := range defs {
				if err := store.Put(ctx, def); err != nil {
					return err
				}
				fmt.Printf("stored %s\n", def.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with one definition or an array")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func shapesGetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one stored shape definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, conn, err := openShapeStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			def, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(def)
		},
	}
}

func shapesListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored shape definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, conn, err := openShapeStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			defs, err := store.List(ctx)
			if err != nil {
				return err
			}
			for _, def := range defs {
				fmt.Printf("%s\ttargets=%d\tproperties=%d\trules=%d\n",
					def.ID, len(def.TargetClasses), len(def.Properties), len(def.Rules))
			}
			return nil
		},
	}
}

func shapesDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored shape definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, conn, err := openShapeStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

// validateCmd publishes a validation request and waits for the matching
// report on the report subject.
func validateCmd(configPath *string) *cobra.Command {
	var (
		shapeIDs []string
		wait     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Request a validation run and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			conn, err := nats.Connect(natsURL(cfg))
			if err != nil {
				return fmt.Errorf("connect to NATS: %w", err)
			}
			defer conn.Close()

			js, err := jetstream.New(conn)
			if err != nil {
				return fmt.Errorf("create jetstream context: %w", err)
			}

			request := &shapevalidator.ValidationRequest{
				RequestID: uuid.NewString(),
				ShapeIDs:  shapeIDs,
			}

			reportSubject := fmt.Sprintf("%s.%s", reportPrefix(cfg), request.RequestID)
			sub, err := conn.SubscribeSync(reportSubject)
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", reportSubject, err)
			}
			defer func() { _ = sub.Unsubscribe() }()

			baseMsg := message.NewBaseMessage(request.Schema(), request, "semshape-cli")
			data, err := json.Marshal(baseMsg)
			if err != nil {
				return fmt.Errorf("marshal request: %w", err)
			}
			if _, err := js.Publish(cmd.Context(), requestSubject(cfg), data); err != nil {
				return fmt.Errorf("publish request: %w", err)
			}

			msg, err := sub.NextMsg(wait)
			if err != nil {
				return fmt.Errorf("no report within %s: %w", wait, err)
			}

			var reply message.BaseMessage
			if err := json.Unmarshal(msg.Data, &reply); err != nil {
				return fmt.Errorf("parse report: %w", err)
			}
			return printJSON(reply.Payload())
		},
	}

	cmd.Flags().StringSliceVar(&shapeIDs, "shape", nil, "Shape ID to run (repeatable, empty = all)")
	cmd.Flags().DurationVar(&wait, "wait", 30*time.Second, "How long to wait for the report")
	return cmd
}

// parseDefinitions accepts either a single definition object or an array.
func parseDefinitions(data []byte) ([]*shape.Definition, error) {
	var defs []*shape.Definition
	if err := json.Unmarshal(data, &defs); err == nil {
		return defs, nil
	}
	var def shape.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return []*shape.Definition{&def}, nil
}

func openShapeStore(ctx context.Context, configPath string) (*storage.ShapeStore, *nats.Conn, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	conn, err := nats.Connect(natsURL(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create jetstream context: %w", err)
	}

	store, err := storage.NewShapeStore(ctx, js, cfg.Validator.ShapeBucket)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return store, conn, nil
}

func requestSubject(cfg *config.Config) string {
	if cfg.Validator.RequestSubject != "" {
		return cfg.Validator.RequestSubject
	}
	return "graph.validate.request"
}

func reportPrefix(cfg *config.Config) string {
	if cfg.Validator.ReportSubjectPrefix != "" {
		return cfg.Validator.ReportSubjectPrefix
	}
	return "graph.validate.report"
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
