package testutils

// FormulaSetYAML is a formula set over the sample event. Expected values
// for team 4099: driver 4, auto_points 16/3, teleop_points 32/3,
// scoring 256/3 (divisor 100) and overall 280/3 (reference 80).
const FormulaSetYAML = `
version: "1.0.0"
metadata:
  name: picklist
  tags: ["2023"]
formulas:
  - id: driver
    type: average
    parameters:
      field: DriverRating
  - id: endgame
    type: scored_average
    parameters:
      field: EndgameFinalCharge
      criteria: endgame
  - id: auto_points
    type: points
    parameters:
      scope: auto
  - id: teleop_points
    type: points
    parameters:
      scope: teleop
  - id: alliance_driver
    type: alliance_sum
    parameters:
      formula: driver
  - id: win
    type: win_probability
stats:
  - id: scoring
    mode: divisor
    max_value: 100
    factors:
      - ref: auto_points
        weight: 4
      - ref: teleop_points
        weight: 6
  - id: overall
    mode: reference
    max_value: 80
    factors:
      - ref: scoring
        weight: 1
      - ref: driver
        weight: 2
        divisor: 1
`
