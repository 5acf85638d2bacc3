package testutil

// CSVFile is a named CSV payload.
type CSVFile struct {
	Name string
	Data []byte
}

// LeadsCSV is a small Tech Lead table spanning three regions.  Gamma has no
// registrations and Delta is the only Goa institution.
const LeadsCSV = `CollegeName,TotalRegistrations,State
Alpha College,40,Kerala
Beta Institute,30,Telangana
Gamma University,0,Kerala
Delta College,2,Goa
`

// InternsCSV pairs with LeadsCSV.  Epsilon has no lead and lands under the
// unassigned node; Alpha and Beta reach 100 with their leads.
const InternsCSV = `CollegeName,TotalRegistrations,State
Alpha College,60,Kerala
Beta Institute,70,Telangana
Epsilon Academy,24,Kerala
`

// LeadsUpload returns LeadsCSV as TechLeads.csv.
func LeadsUpload() CSVFile { return CSVFile{Name: "TechLeads.csv", Data: []byte(LeadsCSV)} }

// InternsUpload returns InternsCSV as AIInterns.csv.
func InternsUpload() CSVFile { return CSVFile{Name: "AIInterns.csv", Data: []byte(InternsCSV)} }

//Personal.AI order the ending
