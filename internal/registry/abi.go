package registry

// ABI fragments for the University registry and the Chainlink price consumer.
// Only the entries the gateway exercises are declared.

const universityABI = `[
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"nextCampusId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"nextCareerId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"nextPensumId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"nextSubjectId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"campuses","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"id","type":"uint256"},{"name":"name","type":"string"}]},
  {"type":"function","name":"careers","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"campusId","type":"uint256"}]},
  {"type":"function","name":"pensums","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"id","type":"uint256"},{"name":"careerId","type":"uint256"}]},
  {"type":"function","name":"subjects","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"id","type":"uint256"},{"name":"credits","type":"uint256"},{"name":"semester","type":"uint256"},{"name":"name","type":"string"}]},
  {"type":"function","name":"campusCareersCount","stateMutability":"view","inputs":[{"name":"campusId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"campusCareers","stateMutability":"view","inputs":[{"name":"campusId","type":"uint256"},{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"careerPensumsCount","stateMutability":"view","inputs":[{"name":"careerId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"careerPensums","stateMutability":"view","inputs":[{"name":"careerId","type":"uint256"},{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"pensumSubjectsCount","stateMutability":"view","inputs":[{"name":"pensumId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"pensumSubjects","stateMutability":"view","inputs":[{"name":"pensumId","type":"uint256"},{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getUser","stateMutability":"view","inputs":[{"name":"wallet","type":"address"}],"outputs":[{"name":"user","type":"tuple","components":[{"name":"currentWallet","type":"address"},{"name":"previousWallets","type":"address[]"},{"name":"roles","type":"uint8[]"},{"name":"careerId","type":"uint256"}]}]},
  {"type":"function","name":"getUserCurrentSubjects","stateMutability":"view","inputs":[{"name":"wallet","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getUserSubjectsOptions","stateMutability":"view","inputs":[{"name":"wallet","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"addCampus","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"}],"outputs":[]},
  {"type":"function","name":"registerSubjects","stateMutability":"nonpayable","inputs":[{"name":"subjectsId","type":"uint256[]"}],"outputs":[]},
  {"type":"function","name":"addUser","stateMutability":"nonpayable","inputs":[{"name":"wallet","type":"address"},{"name":"roles","type":"uint8[]"},{"name":"careerId","type":"uint256"}],"outputs":[]}
]`

const priceConsumerABI = `[
  {"type":"function","name":"getLatestPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"int256"}]}
]`
