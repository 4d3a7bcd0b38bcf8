package usecases

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/holidaze"
	"github.com/example/holidaze/internal/internaltypes"
	"github.com/example/holidaze/internal/state"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	venueSchemaOnce sync.Once
	venueSchema     *jsonschema.Schema
	venueSchemaErr  error
)

func compiledVenueSchema() (*jsonschema.Schema, error) {
	venueSchemaOnce.Do(func() {
		b, err := schemaFS.ReadFile("schemas/venue.json")
		if err != nil {
			venueSchemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource("venue.json", bytes.NewReader(b)); err != nil {
			venueSchemaErr = err
			return
		}
		venueSchema, venueSchemaErr = compiler.Compile("venue.json")
	})
	return venueSchema, venueSchemaErr
}

// ValidateVenuePayload checks raw JSON against the venue schema and decodes it.
func ValidateVenuePayload(raw []byte) (holidaze.VenueInput, error) {
	schema, err := compiledVenueSchema()
	if err != nil {
		return holidaze.VenueInput{}, fmt.Errorf("venue schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return holidaze.VenueInput{}, internaltypes.Invalid("", "venue payload is not valid JSON: %v", err)
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			field := strings.TrimPrefix(leaf.InstanceLocation, "/")
			return holidaze.VenueInput{}, &internaltypes.ValidationError{Field: field, Message: leaf.Message}
		}
		return holidaze.VenueInput{}, err
	}
	var in holidaze.VenueInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return holidaze.VenueInput{}, internaltypes.Invalid("", "venue payload: %v", err)
	}
	return in, nil
}

// VenueAdmin lets venue managers create, update and delete their venues.
type VenueAdmin struct {
	API   VenueAPI
	Cache Invalidator
}

func (u VenueAdmin) authorize(sess state.Session) error {
	if !sess.LoggedIn() {
		return internaltypes.ErrUnauthorized
	}
	if !sess.Profile.VenueManager {
		return fmt.Errorf("profile %q is not a venue manager: %w", sess.Profile.Name, internaltypes.ErrUnauthorized)
	}
	return nil
}

func (u VenueAdmin) Create(ctx context.Context, sess state.Session, raw []byte) (venue.Venue, error) {
	if err := u.authorize(sess); err != nil {
		return venue.Venue{}, err
	}
	in, err := ValidateVenuePayload(raw)
	if err != nil {
		return venue.Venue{}, err
	}
	v, err := u.API.CreateVenue(ctx, sess.Token, in)
	if err != nil {
		return venue.Venue{}, err
	}
	u.invalidate(ctx)
	return v, nil
}

func (u VenueAdmin) Update(ctx context.Context, sess state.Session, id string, raw []byte) (venue.Venue, error) {
	if err := u.authorize(sess); err != nil {
		return venue.Venue{}, err
	}
	if strings.TrimSpace(id) == "" {
		return venue.Venue{}, internaltypes.Invalid("id", "venue id is required")
	}
	in, err := ValidateVenuePayload(raw)
	if err != nil {
		return venue.Venue{}, err
	}
	v, err := u.API.UpdateVenue(ctx, sess.Token, id, in)
	if err != nil {
		return venue.Venue{}, err
	}
	u.invalidate(ctx)
	return v, nil
}

func (u VenueAdmin) Delete(ctx context.Context, sess state.Session, id string) error {
	if err := u.authorize(sess); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return internaltypes.Invalid("id", "venue id is required")
	}
	if err := u.API.DeleteVenue(ctx, sess.Token, id); err != nil {
		return err
	}
	u.invalidate(ctx)
	return nil
}

func (u VenueAdmin) invalidate(ctx context.Context) {
	if u.Cache != nil {
		_ = u.Cache.Invalidate(ctx)
	}
}
