// Package forms holds the named form definitions used by the studio: client
// intake, liability waiver, contact request, inventory item, and business
// details. Each definition pairs the form's initial values with its rule set;
// the form package does the rest.
package forms

import (
	"sort"
	"time"

	"github.com/mesh-intelligence/studiobook/pkg/form"
)

// Form names.
const (
	Intake    = "intake"
	Waiver    = "waiver"
	Contact   = "contact"
	Inventory = "inventory"
	Business  = "business"
)

// dateLayout is the calendar-date format used by date fields.
const dateLayout = "2006-01-02"

// Definition describes one named form.
type Definition struct {
	Name    string
	Title   string
	Initial form.Values
	Rules   form.Rules
}

// New builds a form from the definition.
func (d Definition) New(onSubmit form.SubmitFunc) *form.Form {
	return form.New(d.Initial, onSubmit, d.Rules)
}

// Required lists the fields that carry a rule, sorted.
func (d Definition) Required() []string {
	names := make([]string, 0, len(d.Rules))
	for name := range d.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type builder func(now time.Time) Definition

var registry = map[string]builder{
	Intake:    intake,
	Waiver:    waiver,
	Contact:   contact,
	Inventory: inventory,
	Business:  business,
}

// Lookup returns the definition registered under name. Date defaults are
// taken from the current time.
func Lookup(name string) (Definition, bool) {
	return LookupAt(name, time.Now())
}

// LookupAt is Lookup with an explicit current time.
func LookupAt(name string, now time.Time) (Definition, bool) {
	b, ok := registry[name]
	if !ok {
		return Definition{}, false
	}
	return b(now), true
}

// Names returns every registered form name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func blank(fields ...string) form.Values {
	v := make(form.Values, len(fields))
	for _, f := range fields {
		v[f] = ""
	}
	return v
}

func intake(time.Time) Definition {
	return Definition{
		Name:  Intake,
		Title: "Client Intake",
		Initial: blank(
			"fullName", "dateOfBirth", "address", "city", "state", "zipCode",
			"emergencyContact", "emergencyPhone", "occupation", "referralSource",
			"medicalConditions", "medications", "allergies", "previousTreatments",
		),
		Rules: form.Rules{
			"fullName":         form.MinLength(2, "Full name is required"),
			"dateOfBirth":      form.Required("Date of birth is required"),
			"address":          form.Required("Address is required"),
			"city":             form.Required("City is required"),
			"state":            form.Required("State is required"),
			"zipCode":          form.ZipCode,
			"emergencyContact": form.Required("Emergency contact is required"),
			"emergencyPhone":   form.Phone.WithMessage("Valid phone number is required"),
		},
	}
}

func waiver(now time.Time) Definition {
	initial := blank("fullName", "dateOfBirth", "email", "phone", "signature")
	initial["date"] = now.Format(dateLayout)
	initial["acknowledgement"] = false
	return Definition{
		Name:    Waiver,
		Title:   "Liability Waiver",
		Initial: initial,
		Rules: form.Rules{
			"fullName":    form.MinLength(2, "Full name is required"),
			"dateOfBirth": form.Required("Date of birth is required"),
			"email":       form.Email.WithMessage("Valid email is required"),
			"phone":       form.Phone.WithMessage("Valid phone number is required"),
			"signature":   form.MinLength(2, "Signature is required"),
		},
	}
}

func contact(time.Time) Definition {
	return Definition{
		Name:    Contact,
		Title:   "Contact Request",
		Initial: blank("firstName", "lastName", "email", "phone", "serviceType", "message"),
		Rules: form.Rules{
			"firstName":   form.MinLength(2, "First name must be at least 2 characters"),
			"lastName":    form.MinLength(2, "Last name must be at least 2 characters"),
			"email":       form.Email,
			"phone":       form.Phone,
			"serviceType": form.Required("Please select a service type"),
		},
	}
}

func business(time.Time) Definition {
	return Definition{
		Name:    Business,
		Title:   "Business Information",
		Initial: blank("businessName", "website", "email", "phone", "address", "city", "state", "zipCode"),
		Rules: form.Rules{
			"businessName": form.Required("Business name is required"),
			"website":      form.Tag("omitempty,url", "Invalid URL"),
			"email":        form.Email,
			"phone":        form.Phone,
		},
	}
}
