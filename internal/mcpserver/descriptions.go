package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describePercentile() string {
	return `Computes percentiles of an n-dimensional numeric array along chosen axes.

USE WHEN:
- Summarizing latency, size or score distributions (p50, p90, p99)
- Reducing one axis of a table, e.g. per-endpoint percentiles across samples
- Checking tail behavior without loading the data into a notebook

INPUT:
- array: inline JSON or YAML. Either a nested list ([[1,2],[3,4]]) or an
  object {"dtype": "float64", "shape": [2,2], "data": [1,2,3,4]}
- path: a .json/.yaml file holding the same document (used if array is empty)
- q: one or more levels in [0, 100]; a single level with scalar_q drops the
  leading q axis
- axis: axes to reduce, negative values count from the end; empty reduces all

INTERPRETING RESULTS:
- The result's first axis indexes q (unless scalar_q), followed by the kept
  input axes in order; keep_dims keeps reduced axes as size 1
- lower/higher/nearest return actual elements and keep integer dtypes
- nearest rounds ties to the even rank: p50 of [1,2,3,4] has rank 1.5,
  which rounds to 2, so the result is 3
- midpoint interpolates linearly between neighbors and returns floats
- NaN sorts before every number

RETURNS:
- dtype, shape and nested data of the result array`
}

func describeDescribe() string {
	return `Summarizes the distribution of every element of an array.

USE WHEN:
- Getting a first look at a dataset before choosing percentile levels
- Reporting min, quartiles, median and max together with mean and spread

INTERPRETING RESULTS:
- Percentiles p0, p25, p50, p75, p100 use the server's default interpolation
- p0 and p100 are the minimum and maximum
- stddev is the sample standard deviation (n-1); NaN for a single element
- A large gap between mean and p50 indicates skew

RETURNS:
- count, dtype, shape, mean, stddev and the five percentiles`
}
