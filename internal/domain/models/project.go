package models

import (
	"time"

	"tracker/internal/codec"
	"tracker/internal/domain"
)

// Project groups the tasks done for one client at one hourly rate.
type Project struct {
	ID          domain.PositiveInteger
	ClientID    domain.PositiveInteger
	Name        domain.NonEmptyString
	Description domain.Option[string]
	HourlyRate  domain.NonNegativeNumber
	Budget      domain.Option[domain.NonNegativeNumber]
	CreatedAt   time.Time
}

type NewProject struct {
	ClientID    domain.PositiveInteger
	Name        domain.NonEmptyString
	Description domain.Option[string]
	HourlyRate  domain.NonNegativeNumber
	Budget      domain.Option[domain.NonNegativeNumber]
}

var ProjectCodec = codec.NewObject("Project",
	codec.Prop("id", codec.PositiveInteger(), func(p *Project) *domain.PositiveInteger { return &p.ID }),
	codec.Prop("client_id", codec.PositiveInteger(), func(p *Project) *domain.PositiveInteger { return &p.ClientID }),
	codec.Prop("name", codec.NonEmptyString(), func(p *Project) *domain.NonEmptyString { return &p.Name }),
	codec.Prop("description", codec.Optional(codec.String()), func(p *Project) *domain.Option[string] { return &p.Description }),
	codec.Prop("hourly_rate", codec.NonNegativeNumber(), func(p *Project) *domain.NonNegativeNumber { return &p.HourlyRate }),
	codec.Prop("budget", codec.Optional(codec.NonNegativeNumber()), func(p *Project) *domain.Option[domain.NonNegativeNumber] { return &p.Budget }),
	codec.Prop("created_at", codec.Time(), func(p *Project) *time.Time { return &p.CreatedAt }),
)

var ProjectPatchCodec = codec.NewObject("ProjectPatch",
	codec.Prop("client_id", codec.PositiveInteger(), func(p *Project) *domain.PositiveInteger { return &p.ClientID }),
	codec.Prop("name", codec.NonEmptyString(), func(p *Project) *domain.NonEmptyString { return &p.Name }),
	codec.Prop("description", codec.Optional(codec.String()), func(p *Project) *domain.Option[string] { return &p.Description }),
	codec.Prop("hourly_rate", codec.NonNegativeNumber(), func(p *Project) *domain.NonNegativeNumber { return &p.HourlyRate }),
	codec.Prop("budget", codec.Optional(codec.NonNegativeNumber()), func(p *Project) *domain.Option[domain.NonNegativeNumber] { return &p.Budget }),
)

var NewProjectCodec = codec.NewObject("NewProject",
	codec.Prop("client_id", codec.PositiveInteger(), func(p *NewProject) *domain.PositiveInteger { return &p.ClientID }),
	codec.Prop("name", codec.NonEmptyString(), func(p *NewProject) *domain.NonEmptyString { return &p.Name }),
	codec.Prop("description", codec.Optional(codec.String()), func(p *NewProject) *domain.Option[string] { return &p.Description }),
	codec.Prop("hourly_rate", codec.NonNegativeNumber(), func(p *NewProject) *domain.NonNegativeNumber { return &p.HourlyRate }),
	codec.Prop("budget", codec.Optional(codec.NonNegativeNumber()), func(p *NewProject) *domain.Option[domain.NonNegativeNumber] { return &p.Budget }),
)
