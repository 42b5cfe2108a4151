package domain

import (
	"strings"
	"time"
)

// Sex is the recorded sex of a pigeon.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Valid reports whether s is one of the known values.
func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexUnknown:
		return true
	}
	return false
}

// Label returns a display label.
func (s Sex) Label() string {
	switch s {
	case SexMale:
		return "Male"
	case SexFemale:
		return "Female"
	default:
		return "Unknown"
	}
}

// ParseSex maps free text to a Sex, defaulting to SexUnknown.
func ParseSex(value string) Sex {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m":
		return SexMale
	case "female", "f":
		return SexFemale
	default:
		return SexUnknown
	}
}

// PigeonImages holds the stored-file URLs for the three pigeon photos.
type PigeonImages struct {
	Body    string `json:"body,omitempty"`
	Eye     string `json:"eye,omitempty"`
	Plumage string `json:"plumage,omitempty"`
}

// OwnershipRecord is an immutable transfer entry.
type OwnershipRecord struct {
	PreviousOwner string `json:"previousOwner" validate:"required"`
	TransferDate  string `json:"transferDate" validate:"required"`
	Notes         string `json:"notes,omitempty"`
}

// Purchase is an immutable purchase entry.
type Purchase struct {
	SellerName string   `json:"sellerName" validate:"required"`
	Date       string   `json:"date" validate:"required"`
	Price      *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Notes      string   `json:"notes,omitempty"`
}

// Sale is an immutable sale entry.
type Sale struct {
	BuyerName string   `json:"buyerName" validate:"required"`
	Date      string   `json:"date" validate:"required"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Notes     string   `json:"notes,omitempty"`
}

// Pigeon mirrors the /pigeons resource.
type Pigeon struct {
	ID                string            `json:"_id"`
	LoftID            string            `json:"loftId"`
	RingNumber        string            `json:"ringNumber,omitempty"`
	Name              string            `json:"name"`
	BirthDate         string            `json:"birthDate"`
	Sex               Sex               `json:"sex"`
	Plumage           string            `json:"plumage"`
	Dimensions        string            `json:"dimensions"`
	Images            PigeonImages      `json:"images"`
	FatherID          string            `json:"fatherId,omitempty"`
	MotherID          string            `json:"motherId,omitempty"`
	IsExternal        bool              `json:"isExternal"`
	ExternalOwnerInfo string            `json:"externalOwnerInfo,omitempty"`
	OriginalBreeder   string            `json:"originalBreeder"`
	OwnershipHistory  []OwnershipRecord `json:"ownershipHistory"`
	Purchases         []Purchase        `json:"purchases"`
	Sales             []Sale            `json:"sales"`
	CreatedAt         string            `json:"createdAt,omitempty"`
	UpdatedAt         string            `json:"updatedAt,omitempty"`

	// Optionally populated relations.
	Father *Pigeon `json:"father,omitempty"`
	Mother *Pigeon `json:"mother,omitempty"`
	Loft   *Loft   `json:"loft,omitempty"`
}

// EntityID implements Entity.
func (p Pigeon) EntityID() string { return p.ID }

// HasParents reports whether a father or mother is assigned.
func (p Pigeon) HasParents() bool {
	return p.FatherID != "" || p.MotherID != ""
}

// ParsedBirthDate returns the birth date, or the zero time when unparseable.
func (p Pigeon) ParsedBirthDate() time.Time {
	return parseTime(p.BirthDate)
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (p Pigeon) ParsedCreatedAt() time.Time {
	return parseTime(p.CreatedAt)
}

// PigeonInput is the pigeon creation payload.
type PigeonInput struct {
	LoftID            string            `json:"loftId" validate:"required"`
	RingNumber        string            `json:"ringNumber,omitempty"`
	Name              string            `json:"name" validate:"required"`
	BirthDate         string            `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Sex               Sex               `json:"sex" validate:"required,oneof=male female unknown"`
	Plumage           string            `json:"plumage,omitempty"`
	Dimensions        string            `json:"dimensions,omitempty"`
	Images            PigeonImages      `json:"images"`
	FatherID          string            `json:"fatherId,omitempty"`
	MotherID          string            `json:"motherId,omitempty"`
	IsExternal        bool              `json:"isExternal"`
	ExternalOwnerInfo string            `json:"externalOwnerInfo,omitempty"`
	OriginalBreeder   string            `json:"originalBreeder" validate:"required"`
	OwnershipHistory  []OwnershipRecord `json:"ownershipHistory,omitempty" validate:"dive"`
	Purchases         []Purchase        `json:"purchases,omitempty" validate:"dive"`
	Sales             []Sale            `json:"sales,omitempty" validate:"dive"`
}

// PigeonUpdate is a partial pigeon; nil fields are left untouched by the server.
type PigeonUpdate struct {
	LoftID            *string           `json:"loftId,omitempty"`
	RingNumber        *string           `json:"ringNumber,omitempty"`
	Name              *string           `json:"name,omitempty" validate:"omitempty,min=1"`
	BirthDate         *string           `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Sex               *Sex              `json:"sex,omitempty" validate:"omitempty,oneof=male female unknown"`
	Plumage           *string           `json:"plumage,omitempty"`
	Dimensions        *string           `json:"dimensions,omitempty"`
	Images            *PigeonImages     `json:"images,omitempty"`
	FatherID          *string           `json:"fatherId,omitempty"`
	MotherID          *string           `json:"motherId,omitempty"`
	IsExternal        *bool             `json:"isExternal,omitempty"`
	ExternalOwnerInfo *string           `json:"externalOwnerInfo,omitempty"`
	OriginalBreeder   *string           `json:"originalBreeder,omitempty" validate:"omitempty,min=1"`
	OwnershipHistory  []OwnershipRecord `json:"ownershipHistory,omitempty" validate:"dive"`
	Purchases         []Purchase        `json:"purchases,omitempty" validate:"dive"`
	Sales             []Sale            `json:"sales,omitempty" validate:"dive"`
}

// ParentCandidates returns the pigeons that may be assigned as father and
// mother of selfID in loftID: same loft, not itself, matching sex.
func ParentCandidates(pigeons []Pigeon, loftID, selfID string) (fathers, mothers []Pigeon) {
	for _, p := range pigeons {
		if p.LoftID != loftID || (selfID != "" && p.ID == selfID) {
			continue
		}
		switch p.Sex {
		case SexMale:
			fathers = append(fathers, p)
		case SexFemale:
			mothers = append(mothers, p)
		}
	}
	return fathers, mothers
}
