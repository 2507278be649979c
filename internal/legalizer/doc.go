// Package legalizer is the boundary between the balancer and the sources of
// legal op models and their cost.
//
// The balancer only talks to the Oracle interface. StaticCatalog is the
// reference implementation: it serves op models declared up front in the
// configuration and applies the one schedule-dependent legality rule those
// declarations can express (operand t matching).
package legalizer
