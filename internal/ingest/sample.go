package ingest

// SampleCSV is an example upload covering the accepted header and date variants.
const SampleCSV = `date,person,miles run
2024-01-01,Alice,5
2024-01-01,Bob,3
01/02/2024,Alice,4.5
2024-01-03,Carol,6.2
1/4/2024,Bob,2.8
2024-01-05,Alice,7
2024-01-05,Carol,4.0
13/01/2024,Bob,3.4
2024-01-14,Carol,5.5
2024-01-15,Alice,6
`
