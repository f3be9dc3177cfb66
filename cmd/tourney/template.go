package main

const configTemplate = `# Tournament Configuration
# ========================
# This file defines a weekend tournament: who plays, where, and under which
# rules. ` + "`tourney schedule draft`" + ` turns it into a draft workbook.

tournament:
  id: summer-classic-2025
  name: Summer Classic
  start_date: "2025-07-11"
  end_date: "2025-07-13"

  # Days reserved for pool play. The remaining days are for playoffs.
  # Leave at 0 to use every day but the last for pool play. Tournaments
  # shorter than three days share every day between both.
  pool_play_days: 0

# Divisions contain pools; pools contain teams. Team ids must be unique
# across the whole tournament. Teams marked willing_to_play_extra may be
# given an extra game so that another team reaches its minimum.
divisions:
  - id: u12
    name: 12U
    pools:
      - id: A
        name: Pool A
        teams:
          - {id: hawks, name: Hawks}
          - {id: owls, name: Owls}
          - {id: jays, name: Blue Jays, willing_to_play_extra: true}
          - {id: wrens, name: Wrens}
      - id: B
        name: Pool B
        teams:
          - {id: bears, name: Bears}
          - {id: wolves, name: Wolves}
          - {id: foxes, name: Foxes}
          - {id: lynx, name: Lynx}

# Diamonds and their daily availability. Times use 24-hour format.
# status is one of open, closed, delayed or unknown. Closed diamonds are
# never scheduled; delayed diamonds produce warnings.
diamonds:
  - id: riverside-1
    name: Riverside 1
    available_start: "08:00"
    available_end: "20:00"
  - id: riverside-2
    name: Riverside 2
    available_start: "08:00"
    available_end: "20:00"

# Allocations reserve a block on a diamond. With a division, only that
# division may play there (with a warning); without one, nobody may.
allocations:
  - diamond: riverside-2
    date: "2025-07-12"
    start: "12:00"
    end: "14:00"
    reason: "Field maintenance"

# Rules are hard constraints. A draft that violates them cannot be committed.
rules:
  game_minutes: 90            # Length of every game
  min_rest_minutes: 30        # Minimum gap between a team's games on one day
  daily_caps: [3]             # Max games per team per day; the last entry repeats
  cross_day_rest_hours: 10    # Overnight rest after a late game
  late_game_cutoff: "18:00"   # Games ending after this count as late
  slot_minutes: 30            # Start time granularity
  min_games: 3                # Pool play games every team is guaranteed

# Strategy determines how matchups are generated.
# "min_guarantee" gives every team at least min_games, preferring opponents
# from its own pool. "round_robin" plays every pair in a pool once.
strategy: min_guarantee

# Playoff bracket: top_4, top_6, top_8, cross_pool_4 or cross_pool_8.
playoffs:
  format: top_4
  division: u12

# Final pool play standings, used to seed the bracket.
# standings:
#   u12:
#     - {team: hawks, rank: 1, pool: A}
#     - {team: bears, rank: 2, pool: B}

# Games are kept in memory unless a Postgres URL is given here or in
# TOURNEY_DATABASE_URL (a .env file is read when present).
storage:
  database_url: ""
`
