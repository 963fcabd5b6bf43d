package models

// ContactRequest is the body accepted by the contact relay.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
	Lang    Lang   `json:"lang,omitempty" validate:"omitempty,oneof=en ar"`
}

// TrialRequest is the free-trial sign-up form.
type TrialRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=50"`
	ChildAge string `json:"childAge" validate:"required,max=20"`
	Message  string `json:"message" validate:"omitempty,max=5000"`
	Lang     Lang   `json:"lang,omitempty" validate:"omitempty,oneof=en ar"`
}
