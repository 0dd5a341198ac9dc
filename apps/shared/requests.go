// Package shared holds the input types the CLI and the HTTP API validate before calling the workspace.
package shared

import (
	"net/mail"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
)

type (
	// NameRequest names a class or a student.
	NameRequest struct {
		Name string `json:"name" validate:"notblank,min=2"`
	}

	ImportRequest struct {
		ClassName string   `json:"className" validate:"notblank,min=2"`
		Names     []string `json:"names" validate:"required,min=1,dive,notblank"`
	}

	MoveRequest struct {
		From *int `json:"from" validate:"required,min=0"`
		To   *int `json:"to" validate:"required,min=0"`
	}

	ScoreRequest struct {
		Value *float64 `json:"value" validate:"required"`
	}

	// CriterionRequest adds a criterion. MaxScore is clamped to 1..100; 0 means the default.
	CriterionRequest struct {
		Name     string `json:"name" validate:"notblank,min=2"`
		MaxScore int    `json:"maxScore"`
		Icon     string `json:"icon"`
	}

	CriterionUpdateRequest struct {
		Name     *string `json:"name" validate:"omitempty,notblank,min=2"`
		MaxScore *int    `json:"maxScore"`
		Icon     *string `json:"icon"`
	}

	BackupRequest struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name"`
	}
)

func (r *NameRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	r.Name = core.CleanString(r.Name)
	return core.ValidateStruct(validate, translator, r)
}

func (r *ImportRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	r.ClassName = core.CleanString(r.ClassName)
	return core.ValidateStruct(validate, translator, r)
}

func (r *MoveRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, r)
}

func (r *ScoreRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, r)
}

func (r *CriterionRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	r.Name = core.CleanString(r.Name)
	return core.ValidateStruct(validate, translator, r)
}

func (r *CriterionUpdateRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	if r.Name != nil {
		name := core.CleanString(*r.Name)
		r.Name = &name
	}
	return core.ValidateStruct(validate, translator, r)
}

func (r CriterionUpdateRequest) Update() roster.CriterionUpdate {
	return roster.CriterionUpdate{Name: r.Name, MaxScore: r.MaxScore, Icon: r.Icon}
}

func (r *BackupRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Name = core.CleanString(r.Name)
	return core.ValidateStruct(validate, translator, r)
}

func (r BackupRequest) Address() mail.Address {
	return mail.Address{Name: r.Name, Address: r.Email}
}
