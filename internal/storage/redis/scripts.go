package redis

// putDayScript writes a daily usage record hash and registers its date in the
// date set in one atomic step, so range queries never observe a date without
// its record.
const putDayScript = `
local dayKey = KEYS[1]
local dateSet = KEYS[2]

redis.call('HSET', dayKey,
	'date', ARGV[1],
	'plan_tier', ARGV[2],
	'earned_seconds', ARGV[3],
	'consumed_seconds', ARGV[4],
	'last_updated', ARGV[5])
redis.call('SADD', dateSet, ARGV[1])

return 1
`
