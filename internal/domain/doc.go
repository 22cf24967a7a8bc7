// Package domain models the MODE (Method for Object-based Diagnostic
// Evaluation) invocation contract: what the driver hands to the MET `mode`
// tool for one forecast/observation comparison.
//
// # Field specifications
//
// MODE reads the fields to compare from the FCST_FIELD and OBS_FIELD
// environment variables, which its config file splices into a dictionary
// entry. Each value is a brace-delimited fragment in MET config syntax:
//
//	{ name="TMP"; level="P500";  }
//	{ name="APCP_03"; level="(*,*)";  }
//	{ name="APCP"; level="03"; prob=TRUE;  }
//	{ name="PROB"; level="A03"; prob={ name="APCP"; thresh_lo=0.5; }  }
//
// The first is a plain deterministic field. The second is the output of a
// PCP-Combine step, where the accumulation is folded into the variable name
// and the level becomes the wildcard pair "(*,*)". The last two are
// probabilistic: NetCDF and GEMPAK inputs carry the probability as a
// regular field flagged with prob=TRUE and keep only the level value,
// while GRIB inputs store it under the PROB name and select the event
// through a nested dictionary whose thresh_lo/thresh_hi bound comes from
// the field threshold.
//
// Extra options configured for the variable are written just before the
// closing brace, so with GRIB_lvl_typ=100; the first example becomes
// { name="TMP"; level="P500"; GRIB_lvl_typ=100; }.
//
// # Levels
//
// Levels are written as a one-letter type followed by a value: "P500"
// (pressure, hPa), "A03" (accumulation, hours), "Z2" (height, m). Levels
// without a letter are passed through as bare values. In the nested
// probability form the value is zero-padded to two digits ("A3" renders as
// "A03").
//
// # Times
//
// Init and valid times are formatted as YYYYMMDDHHMMSS; MET_VALID_HHMM
// carries the zero-padded hour and minute of the valid time.
package domain
