package search

import "strings"

// serviceCatalog is the fixed list of known product short names used for
// query-intent extraction. It is read-only for the process lifetime.
//
// Extraction is a linear substring scan; at this catalog size that is faster
// in practice than building an automaton, and the list changes rarely.
var serviceCatalog = []string{
	"EVS", "OBS", "ECS", "VPC", "RDS", "CCE", "ELB", "IAM", "APM", "CSS",
	"DWS", "DLI", "DDS", "DMS", "KAFKA", "SMN", "SMS", "CSE", "DCS", "DDM",
	"DRS", "GES", "GAUSSDB", "MRS", "SFS", "SWR", "FUNCTIONGRAPH", "MODELARTS", "DIS", "CLOUDTABLE",
	"CODEARTS", "AOM", "CES", "LTS", "BMS", "AS", "CAE", "CCI", "CSBS", "VBS",
	"SDRS", "CBR", "DES", "FLINK", "CLICKHOUSE", "CDN", "DNS", "VOD", "RTC", "APIG",
	"ROMA", "WAF", "HSS", "DBSS", "STS", "IEF", "IMS", "EIP", "NAT", "VPN",
	"CTS", "KMS", "DEW", "CSMS", "CBH", "CFW", "SECMASTER", "SA", "VSS", "CGS",
	"AAD", "ANTIDDOS", "SCM", "PCA", "DSC", "DAS", "UGO", "TAURUSDB", "OPENGAUSS", "GEMINIDB",
	"CDM", "DGC", "DATAARTS", "DLF", "DLV", "LAKEFORMATION", "RES", "TICS", "OCR", "NLP",
	"SIS", "FRS", "IVS", "VIS", "MPC", "LIVE", "METASTUDIO", "VIAS", "PANGU", "HILENS",
	"IOTDA", "IOTEDGE", "IDME", "OSC", "RFS", "RMS", "TMS", "COC", "OMS", "MGC",
	"SERVICESTAGE", "ASM", "MAS", "EG", "ROCKETMQ", "RABBITMQ", "MSGSMS", "KOOMESSAGE", "KOOGALLERY", "WELINK",
	"MEETING", "WORKSPACE", "CPH", "HECS", "IEC", "CC", "GA", "ER", "VPCEP", "DC",
	"DEH", "DSS", "CPTS", "CLOUDTEST", "CODECHECK", "CLOUDIDE", "DEVSTAR", "PROJECTMAN", "PIPELINE", "CODEHUB",
	"KPS", "ECM", "EDS", "EIHEALTH", "GSL", "ISDP", "UCS", "CCM", "AOS", "EDGESEC",
	"BCS", "IMAGESEARCH", "SPARKRTC", "OPTVERSE", "KOODRIVE", "ORGANIZATIONS", "RGC", "RAM", "MODERATION", "CBS",
	"SFSTURBO", "DCC", "CLOUDPOND", "KOOMAP", "KOOSEARCH", "ASTROZERO", "ASTROFLOW", "ASTROCANVAS", "ROMAEXCHANGE", "AIGALLERY",
}

// ExtractServices returns every catalog entry the query mentions,
// case-insensitively, as a substring. The returned slice preserves catalog
// order and may be empty.
func ExtractServices(query string) []string {
	upper := strings.ToUpper(query)
	var found []string
	for _, service := range serviceCatalog {
		if strings.Contains(upper, service) {
			found = append(found, service)
		}
	}
	return found
}
