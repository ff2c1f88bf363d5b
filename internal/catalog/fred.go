package catalog

// FRED covers the US indicators pulled from Federal Reserve Economic Data.
// Seasonally adjusted series are marked (SA), unadjusted ones (NSA).
var FRED = New(SourceFRED, []Category{
	{Name: "Employment", Entries: []Entry{
		{Code: "UNRATE", Name: "Unemployment Rate (SA)", Cadence: CadenceMonthly},
		{Code: "PAYEMS", Name: "Nonfarm Payrolls (SA)", Cadence: CadenceMonthly},
		{Code: "ICSA", Name: "Initial Jobless Claims (SA)", Cadence: CadenceWeekly},
		{Code: "CCSA", Name: "Continued Claims (SA)", Cadence: CadenceWeekly},
		{Code: "CIVPART", Name: "Labor Force Participation Rate (SA)", Cadence: CadenceMonthly},
		{Code: "EMRATIO", Name: "Employment-Population Ratio (SA)", Cadence: CadenceMonthly},
		{Code: "U6RATE", Name: "U-6 Unemployment Rate (SA)", Cadence: CadenceMonthly},
		{Code: "AWHAETP", Name: "Average Weekly Hours, Private (SA)", Cadence: CadenceMonthly},
		{Code: "CES0500000003", Name: "Average Hourly Earnings, Private (SA)", Cadence: CadenceMonthly},
		{Code: "JTSJOL", Name: "Job Openings JOLTS (SA)", Cadence: CadenceMonthly},
	}},
	{Name: "Inflation", Entries: []Entry{
		{Code: "CPIAUCSL", Name: "Consumer Price Index (SA)", Cadence: CadenceMonthly},
		{Code: "CPILFESL", Name: "Core CPI ex Food & Energy (SA)", Cadence: CadenceMonthly},
		{Code: "PCEPI", Name: "PCE Price Index (SA)", Cadence: CadenceMonthly},
		{Code: "PCEPILFE", Name: "Core PCE (SA)", Cadence: CadenceMonthly},
		{Code: "PPIFIS", Name: "Producer Price Index (SA)", Cadence: CadenceMonthly},
		{Code: "T5YIE", Name: "5-Year Breakeven Inflation", Cadence: CadenceDaily},
		{Code: "T10YIE", Name: "10-Year Breakeven Inflation", Cadence: CadenceDaily},
		{Code: "MICH", Name: "U of Michigan Inflation Expectation (NSA)", Cadence: CadenceMonthly},
		{Code: "GASREGW", Name: "Regular Gasoline Price (NSA)", Cadence: CadenceWeekly},
		{Code: "DCOILWTICO", Name: "Crude Oil Price WTI", Cadence: CadenceDaily},
	}},
	{Name: "Activity", Entries: []Entry{
		{Code: "GDP", Name: "Nominal GDP (SA)", Cadence: CadenceQuarterly},
		{Code: "GDPC1", Name: "Real GDP (SA)", Cadence: CadenceQuarterly},
		{Code: "INDPRO", Name: "Industrial Production Index (SA)", Cadence: CadenceMonthly},
		{Code: "TCU", Name: "Capacity Utilization (SA)", Cadence: CadenceMonthly},
		{Code: "RSXFS", Name: "Retail Sales ex Food Services (SA)", Cadence: CadenceMonthly},
		{Code: "HOUST", Name: "Housing Starts (SA)", Cadence: CadenceMonthly},
		{Code: "PERMIT", Name: "Building Permits (SA)", Cadence: CadenceMonthly},
		{Code: "DGORDER", Name: "Durable Goods Orders (SA)", Cadence: CadenceMonthly},
		{Code: "CFNAI", Name: "Chicago Fed National Activity Index (SA)", Cadence: CadenceMonthly},
	}},
	{Name: "Sentiment", Entries: []Entry{
		{Code: "UMCSENT", Name: "U of Michigan Consumer Sentiment (NSA)", Cadence: CadenceMonthly},
		{Code: "CSCICP03USM665S", Name: "Consumer Confidence (SA)", Cadence: CadenceMonthly},
		{Code: "STLFSI4", Name: "St. Louis Fed Financial Stress Index", Cadence: CadenceWeekly},
		{Code: "NFCI", Name: "National Financial Conditions Index", Cadence: CadenceWeekly},
	}},
	{Name: "Rates", Entries: []Entry{
		{Code: "FEDFUNDS", Name: "Federal Funds Rate", Cadence: CadenceMonthly},
		{Code: "DFEDTARU", Name: "Fed Target Rate Upper Bound", Cadence: CadenceDaily},
		{Code: "DFEDTARL", Name: "Fed Target Rate Lower Bound", Cadence: CadenceDaily},
		{Code: "DGS2", Name: "2-Year Treasury Yield", Cadence: CadenceDaily},
		{Code: "DGS5", Name: "5-Year Treasury Yield", Cadence: CadenceDaily},
		{Code: "DGS10", Name: "10-Year Treasury Yield", Cadence: CadenceDaily},
		{Code: "DGS30", Name: "30-Year Treasury Yield", Cadence: CadenceDaily},
		{Code: "T10Y2Y", Name: "10Y-2Y Treasury Spread", Cadence: CadenceDaily},
		{Code: "T10Y3M", Name: "10Y-3M Treasury Spread", Cadence: CadenceDaily},
		{Code: "BAMLH0A0HYM2", Name: "High Yield Spread", Cadence: CadenceDaily},
	}},
	{Name: "Money Supply", Entries: []Entry{
		{Code: "M1SL", Name: "M1 Money Stock (SA)", Cadence: CadenceMonthly},
		{Code: "M2SL", Name: "M2 Money Stock (SA)", Cadence: CadenceMonthly},
		{Code: "BOGMBASE", Name: "Monetary Base (SA)", Cadence: CadenceMonthly},
		{Code: "WALCL", Name: "Fed Total Assets", Cadence: CadenceWeekly},
		{Code: "WTREGEN", Name: "Treasury General Account", Cadence: CadenceWeekly},
		{Code: "RRPONTSYD", Name: "Overnight Reverse Repo", Cadence: CadenceDaily},
		{Code: "TOTRESNS", Name: "Bank Reserves (NSA)", Cadence: CadenceMonthly},
	}},
})
