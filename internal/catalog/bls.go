package catalog

// BLS covers the US labor-market indicators pulled from the Bureau of Labor
// Statistics time series API. Series ID prefixes identify the survey:
// CU = CPI-U, CE = establishment employment, LN = labor force statistics,
// JT = JOLTS, PR = productivity, WP = producer prices.
var BLS = New(SourceBLS, []Category{
	{Name: "Inflation", Entries: []Entry{
		{Code: "CUUR0000SA0", Name: "CPI All Items (NSA)", Cadence: CadenceMonthly},
		{Code: "CUUR0000SA0L1E", Name: "Core CPI ex Food & Energy (NSA)", Cadence: CadenceMonthly},
		{Code: "CUUR0000SAF1", Name: "CPI Food (NSA)", Cadence: CadenceMonthly},
		{Code: "CUUR0000SETA01", Name: "CPI New Vehicles (NSA)", Cadence: CadenceMonthly},
		{Code: "CUUR0000SETA02", Name: "CPI Used Vehicles (NSA)", Cadence: CadenceMonthly},
		{Code: "CUUR0000SAH1", Name: "CPI Shelter (NSA)", Cadence: CadenceMonthly},
		{Code: "CUUR0000SEHA", Name: "CPI Rent (NSA)", Cadence: CadenceMonthly},
		{Code: "CUUR0000SAM1", Name: "CPI Medical Care (NSA)", Cadence: CadenceMonthly},
		{Code: "CUUR0000SETB01", Name: "CPI Gasoline (NSA)", Cadence: CadenceMonthly},
		{Code: "CUUR0000SEHF01", Name: "CPI Electricity (NSA)", Cadence: CadenceMonthly},
	}},
	{Name: "Employment", Entries: []Entry{
		{Code: "CES0000000001", Name: "Total Nonfarm Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES0500000001", Name: "Private Nonfarm Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES1000000001", Name: "Mining Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES2000000001", Name: "Construction Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES3000000001", Name: "Manufacturing Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES4000000001", Name: "Transportation & Warehousing Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES5000000001", Name: "Information Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES6000000001", Name: "Financial Activities Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES7000000001", Name: "Professional Services Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES8000000001", Name: "Education & Healthcare Employment (SA)", Cadence: CadenceMonthly},
		{Code: "CES6500000001", Name: "Leisure & Hospitality Employment (SA)", Cadence: CadenceMonthly},
	}},
	{Name: "Unemployment", Entries: []Entry{
		{Code: "LNS14000000", Name: "Unemployment Rate (SA)", Cadence: CadenceMonthly},
		{Code: "LNS13000000", Name: "Number of Unemployed (SA)", Cadence: CadenceMonthly},
		{Code: "LNS11000000", Name: "Civilian Labor Force (SA)", Cadence: CadenceMonthly},
		{Code: "LNS12000000", Name: "Employed Persons (SA)", Cadence: CadenceMonthly},
		{Code: "LNS11300000", Name: "Labor Force Participation Rate (SA)", Cadence: CadenceMonthly},
		{Code: "LNS12300000", Name: "Employment-Population Ratio (SA)", Cadence: CadenceMonthly},
		{Code: "LNS14100000", Name: "Unemployment Rate 16-19 (SA)", Cadence: CadenceMonthly},
		{Code: "LNS13008636", Name: "Long-Term Unemployed 27+ Weeks (SA)", Cadence: CadenceMonthly},
		{Code: "LNS14023621", Name: "U-6 Unemployment Rate (SA)", Cadence: CadenceMonthly},
	}},
	{Name: "JOLTS", Entries: []Entry{
		{Code: "JTS000000000000000JOL", Name: "Job Openings (SA)", Cadence: CadenceMonthly},
		{Code: "JTS000000000000000HIR", Name: "Hires Rate (SA)", Cadence: CadenceMonthly},
		{Code: "JTS000000000000000TSL", Name: "Total Separations (SA)", Cadence: CadenceMonthly},
		{Code: "JTS000000000000000QUL", Name: "Quits (SA)", Cadence: CadenceMonthly},
		{Code: "JTS000000000000000LDL", Name: "Layoffs & Discharges (SA)", Cadence: CadenceMonthly},
		{Code: "JTS000000000000000JOR", Name: "Job Openings Rate (SA)", Cadence: CadenceMonthly},
		{Code: "JTS000000000000000QUR", Name: "Quits Rate (SA)", Cadence: CadenceMonthly},
	}},
	{Name: "Wages", Entries: []Entry{
		{Code: "CES0500000003", Name: "Average Hourly Earnings, Private (SA)", Cadence: CadenceMonthly},
		{Code: "CES0500000011", Name: "Average Weekly Hours, Private (SA)", Cadence: CadenceMonthly},
		{Code: "CES3000000003", Name: "Average Hourly Earnings, Manufacturing (SA)", Cadence: CadenceMonthly},
		{Code: "CES3000000011", Name: "Average Weekly Hours, Manufacturing (SA)", Cadence: CadenceMonthly},
		{Code: "CES0500000030", Name: "Average Weekly Earnings, Private (SA)", Cadence: CadenceMonthly},
		{Code: "CES0500000008", Name: "Average Hourly Earnings, Production (SA)", Cadence: CadenceMonthly},
	}},
	{Name: "Productivity", Entries: []Entry{
		{Code: "PRS85006092", Name: "Nonfarm Business Productivity (SA)", Cadence: CadenceQuarterly},
		{Code: "PRS85006112", Name: "Nonfarm Unit Labor Costs (SA)", Cadence: CadenceQuarterly},
		{Code: "PRS85006152", Name: "Nonfarm Hourly Compensation (SA)", Cadence: CadenceQuarterly},
		{Code: "PRS30006092", Name: "Manufacturing Productivity (SA)", Cadence: CadenceQuarterly},
		{Code: "PRS30006112", Name: "Manufacturing Unit Labor Costs (SA)", Cadence: CadenceQuarterly},
	}},
	{Name: "PPI", Entries: []Entry{
		{Code: "WPUFD4", Name: "PPI Final Demand (NSA)", Cadence: CadenceMonthly},
		{Code: "WPUFD49104", Name: "PPI Final Demand less Foods (NSA)", Cadence: CadenceMonthly},
		{Code: "WPUFD49116", Name: "PPI Core (NSA)", Cadence: CadenceMonthly},
		{Code: "WPU00000000", Name: "PPI All Commodities (NSA)", Cadence: CadenceMonthly},
	}},
})
