// Package fulfillment selects the nearest fulfillment location for a
// customer and maps great-circle distance onto delivery tiers. The tier
// banding is data, not branching: reconfiguring fees or cut-offs never
// touches the conversation flow.
package fulfillment
