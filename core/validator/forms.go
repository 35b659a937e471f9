package validator

import (
	"regexp"
	"strings"
)

// Interests is the fixed enumeration of registration interests.
var Interests = []string{
	"Peace Ambassador",
	"Community Member",
	"Partner",
	"Sponsor",
	"Volunteer",
}

// Genders is the optional gender enumeration from the registration form.
var Genders = []string{"Male", "Female", "Other", "Prefer not to say"}

// phonePattern accepts loose international formats like +256 (700) 123-456.
var phonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{1,4}[)]?[-\s.]?[(]?[0-9]{1,4}[)]?[-\s.]?[0-9]{1,9}$`)

// RegistrationInput is the raw registration form submission.
type RegistrationInput struct {
	FullName     string `form:"full_name" json:"full_name"`
	Email        string `form:"email" json:"email"`
	Phone        string `form:"phone" json:"phone"`
	Country      string `form:"country" json:"country"`
	City         string `form:"city" json:"city"`
	Gender       string `form:"gender" json:"gender"`
	AgeGroup     string `form:"age_group" json:"age_group"`
	Interest     string `form:"interest" json:"interest"`
	Message      string `form:"message" json:"message"`
	CaptchaToken string `form:"g-recaptcha-response" json:"g-recaptcha-response"`
}

// Validate normalizes the input in place and returns all rule violations.
// A nil result means the input is valid and normalized for downstream use.
func (in *RegistrationInput) Validate() Violations {
	in.FullName = trim(in.FullName)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = trim(in.Phone)
	in.Country = trim(in.Country)
	in.City = trim(in.City)
	in.AgeGroup = trim(in.AgeGroup)
	in.Message = trim(in.Message)

	return Apply(
		Required("full_name", in.FullName, "Full name is required"),
		LengthBetween("full_name", in.FullName, 2, 100, "Name must be between 2 and 100 characters"),
		Required("email", in.Email, "Email is required"),
		Email("email", in.Email, "Please provide a valid email address"),
		Matches("phone", in.Phone, phonePattern, "Please provide a valid phone number"),
		MaxLen("country", in.Country, 50, "Country name is too long"),
		MaxLen("city", in.City, 100, "City name is too long"),
		OneOf("gender", in.Gender, Genders, "Please select a valid gender"),
		MaxLen("age_group", in.AgeGroup, 20, "Age group is too long"),
		Required("interest", in.Interest, "Area of interest is required"),
		OneOf("interest", in.Interest, Interests, "Please select a valid area of interest"),
		MaxLen("message", in.Message, 1000, "Message is too long (max 1000 characters)"),
	)
}

// ContactInput is the raw contact form submission.
type ContactInput struct {
	Name         string `form:"name" json:"name"`
	Email        string `form:"email" json:"email"`
	Subject      string `form:"subject" json:"subject"`
	Message      string `form:"message" json:"message"`
	CaptchaToken string `form:"g-recaptcha-response" json:"g-recaptcha-response"`
}

// Validate normalizes the input in place and returns all rule violations.
func (in *ContactInput) Validate() Violations {
	in.Name = trim(in.Name)
	in.Email = NormalizeEmail(in.Email)
	in.Subject = trim(in.Subject)
	in.Message = trim(in.Message)

	return Apply(
		Required("name", in.Name, "Name is required"),
		LengthBetween("name", in.Name, 2, 100, "Name must be between 2 and 100 characters"),
		Required("email", in.Email, "Email is required"),
		Email("email", in.Email, "Please provide a valid email address"),
		Required("subject", in.Subject, "Subject is required"),
		LengthBetween("subject", in.Subject, 3, 200, "Subject must be between 3 and 200 characters"),
		Required("message", in.Message, "Message is required"),
		LengthBetween("message", in.Message, 10, 2000, "Message must be between 10 and 2000 characters"),
	)
}

// LoginInput is the raw admin login submission.
type LoginInput struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate normalizes the username and returns all rule violations.
// The password is never trimmed or otherwise rewritten.
func (in *LoginInput) Validate() Violations {
	in.Username = trim(in.Username)

	return Apply(
		Required("username", in.Username, "Username is required"),
		Required("password", in.Password, "Password is required"),
		LengthBetween("password", in.Password, 6, 1024, "Password must be at least 6 characters"),
	)
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
