// Package fulfillmentservice contains the campaign fulfillment orchestrator:
// application review, product shipment, task lifecycle, content review and
// creator payouts.
//
// Domain and application logic stay decoupled from runtime concerns through
// ports and adapter composition.
package fulfillmentservice
