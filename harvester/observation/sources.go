package observation

// Source keys known to the CATCH index.
const (
	SourceATLASMaunaLoa   = "atlas_mauna_loa"
	SourceATLASHaleakela  = "atlas_haleakela"
	SourceATLASSutherland = "atlas_sutherland"
	SourceATLASRioHurtado = "atlas_rio_hurtado"

	SourceCatalinaBigelow      = "catalina_bigelow"
	SourceCatalinaLemmon       = "catalina_lemmon"
	SourceCatalinaBokNEOSurvey = "catalina_bokneosurvey"

	SourceSkyMapperDR4 = "skymapper_dr4"
	SourceSpacewatch   = "spacewatch"
)

// ATLASSources lists the per-site ATLAS sources, one per telescope code.
var ATLASSources = []string{
	SourceATLASMaunaLoa,
	SourceATLASHaleakela,
	SourceATLASSutherland,
	SourceATLASRioHurtado,
}

// CatalinaSources lists the CSS telescopes archived at PSI.
var CatalinaSources = []string{
	SourceCatalinaBigelow,
	SourceCatalinaLemmon,
	SourceCatalinaBokNEOSurvey,
}

// atlasTelescopes maps ATLAS product ID prefixes to sources,
// e.g. 01a59613o0586o_fits observed from Mauna Loa.
var atlasTelescopes = map[string]string{
	"01": SourceATLASMaunaLoa,
	"02": SourceATLASHaleakela,
	"03": SourceATLASSutherland,
	"04": SourceATLASRioHurtado,
}

// cssTelescopes maps CSS product ID station codes to sources,
// e.g. g96_20220131_2b_n27011_01_0001.arch observed from Mount Lemmon.
var cssTelescopes = map[string]string{
	"703": SourceCatalinaBigelow,
	"G96": SourceCatalinaLemmon,
	"V06": SourceCatalinaBokNEOSurvey,
}
