package dataset

// Kind identifies one of the three source datasets.
type Kind string

const (
	Enrolment   Kind = "enrolment"
	Demographic Kind = "demographic"
	Biometric   Kind = "biometric"
)

// Kinds lists the dataset kinds in pipeline order.
var Kinds = []Kind{Enrolment, Demographic, Biometric}

// Well-known column names shared by the three extracts.
const (
	ColState            = "State"
	ColDistrict         = "District"
	ColPinCode          = "Pin Code"
	ColAadhaarGenerated = "Aadhaar Generated"
	ColUpdateCount      = "Update_Count"
	ColUpdateType       = "Update_Type"
	ColAgeGroup         = "Age_Group"
	ColEnrolmentMonth   = "Enrolment_Month"
	ColUpdateMonth      = "Update_Month"
)

// GeoKeys is the full geographic key used for joins.
var GeoKeys = []string{ColState, ColDistrict, ColPinCode}

// Schema enumerates the column roles of one dataset. Roles are explicit
// rather than discovered by name matching; columns not listed in any
// role pass through untouched.
type Schema struct {
	Keys        []string `yaml:"keys"`
	DateColumns []string `yaml:"date_columns"`
	Numeric     []string `yaml:"numeric_columns"`
	Categorical []string `yaml:"categorical_columns"`
}

// DefaultSchema returns the documented minimal schema for a dataset kind.
func DefaultSchema(kind Kind) Schema {
	switch kind {
	case Enrolment:
		return Schema{
			Keys:        append([]string(nil), GeoKeys...),
			DateColumns: []string{ColEnrolmentMonth},
			Numeric:     []string{ColAadhaarGenerated, ColPinCode},
			Categorical: []string{ColAgeGroup},
		}
	case Demographic:
		return Schema{
			Keys:        append([]string(nil), GeoKeys...),
			DateColumns: []string{ColUpdateMonth},
			Numeric:     []string{ColUpdateCount, ColPinCode},
			Categorical: []string{ColAgeGroup, ColUpdateType},
		}
	case Biometric:
		return Schema{
			Keys:        append([]string(nil), GeoKeys...),
			DateColumns: []string{ColUpdateMonth},
			Numeric:     []string{ColUpdateCount, ColPinCode},
			Categorical: []string{ColAgeGroup},
		}
	}
	return Schema{Keys: append([]string(nil), GeoKeys...)}
}

// IsDateColumn reports whether the schema declares the column as a date.
func (s Schema) IsDateColumn(name string) bool {
	for _, c := range s.DateColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Dataset is one loaded source: its kind, declared schema, and rows.
// Created by the loader, replaced by the cleaner, read-only afterwards.
type Dataset struct {
	Kind   Kind
	Schema Schema
	Table  *Table
	Source string
}

// Clone deep-copies the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	return &Dataset{
		Kind:   d.Kind,
		Schema: d.Schema,
		Table:  d.Table.Clone(),
		Source: d.Source,
	}
}
