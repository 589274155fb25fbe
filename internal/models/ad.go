package models

// AdStatusPublished marks an ad as publicly visible. Ads are written by
// the publication flow elsewhere; cohort queries only ever filter on
// this status and the publication timestamp, so no Ad row type exists
// here.
const AdStatusPublished = "published"
