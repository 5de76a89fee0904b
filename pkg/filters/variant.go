package filters

import (
	"strings"

	"github.com/openbge-client/internal/domain"
)

// PickVariants keeps the records that carry an RS id and maps them to
// VariantRecords. Input order is preserved.
func PickVariants(variants []Variant) []domain.VariantRecord {
	out := make([]domain.VariantRecord, 0, len(variants))
	for _, v := range variants {
		rsid := firstNonEmpty(v.AlternateID)
		if rsid == "" {
			continue
		}

		out = append(out, domain.VariantRecord{
			Chromosome: string(v.Call.Chromosome),
			Position:   v.Call.Position.Value,
			IsCall:     !bool(v.Call.NoCall),
			RSID:       rsid,
			Genotype:   strings.ReplaceAll(string(v.Call.Genotype), "/", ""),
		})
	}
	return out
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
