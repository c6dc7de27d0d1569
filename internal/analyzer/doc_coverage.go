package analyzer

import (
	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/internal/parser"
)

// implicitParams are receiver-like parameters that never need annotations
var implicitParams = map[string]bool{
	"self": true,
	"cls":  true,
}

// AnalyzeDocCoverage measures docstring and type annotation coverage for a
// parsed module. Public symbols are functions and classes whose name does not
// start with an underscore; dunder names count as public.
func AnalyzeDocCoverage(module string, ast *parser.Node) domain.DocCoverageRecord {
	record := domain.DocCoverageRecord{Module: module}

	for _, class := range ast.Classes() {
		if !class.IsPublic() {
			continue
		}
		record.PublicSymbols++
		if class.HasDocstring {
			record.DocumentedPublic++
		}
	}

	for _, fn := range ast.Functions() {
		if fn.IsPublic() {
			record.PublicSymbols++
			if fn.HasDocstring {
				record.DocumentedPublic++
			}
		}

		// Annotation coverage counts every function, public or not:
		// each named parameter is an annotatable site, plus the return type
		for _, param := range fn.Params {
			if implicitParams[param.Name] {
				continue
			}
			record.TotalAnnotatable++
			if param.Annotated {
				record.Annotated++
			}
		}

		record.TotalAnnotatable++
		if fn.HasReturnType {
			record.Annotated++
		}
	}

	return record
}

// MergeDocCoverage combines per-module records into a project-wide record
func MergeDocCoverage(records []domain.DocCoverageRecord) domain.DocCoverageRecord {
	total := domain.DocCoverageRecord{Module: "<project>"}
	for _, r := range records {
		total.PublicSymbols += r.PublicSymbols
		total.DocumentedPublic += r.DocumentedPublic
		total.TotalAnnotatable += r.TotalAnnotatable
		total.Annotated += r.Annotated
	}
	return total
}
